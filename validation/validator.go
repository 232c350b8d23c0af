package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/flowkernel/errors"
)

// FieldError is one rule violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates violations of rules that struct tags cannot
// express, such as a stage's position in a pipeline. Methods return the
// receiver so checks can be chained.
type Validator struct {
	errors []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a violation.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any violation was recorded.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the recorded violations in the order they were found.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an INVALID_INPUT AppError listing every violation, or nil.
func (v *Validator) Validate() *errors.AppError {
	return v.ValidateWith(errors.Validation)
}

// ValidateWith is Validate with a caller-chosen error constructor. The
// violations are attached under the "fields" detail.
func (v *Validator) ValidateWith(build func(message string) *errors.AppError) *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = e.Field + ": " + e.Message
	}
	return build(strings.Join(messages, "; ")).WithDetail("fields", v.errors)
}

// Required records a violation when value is blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Param checks an optional parameter of owner: it must be set when wanted
// and absent otherwise.
func (v *Validator) Param(field string, set, wanted bool, owner any) *Validator {
	switch {
	case wanted && !set:
		v.AddError(field, "is required")
	case !wanted && set:
		v.AddError(field, fmt.Sprintf("is not allowed for %v", owner))
	}
	return v
}

// Custom records message for field unless condition holds.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// OneOf records a violation unless value is one of allowed.
func OneOf[T comparable](v *Validator, field string, value T, allowed ...T) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = fmt.Sprint(a)
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s, got %v", strings.Join(names, ", "), value))
	return v
}
