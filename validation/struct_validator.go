package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/flowkernel/errors"
)

// structValidator is built on first use. Field names in messages come from
// the json tag, falling back to the snake_cased Go name.
var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return toSnakeCase(f.Name)
		}
		return name
	})
	return v
})

// tagMessages maps validator tags to message prefixes; the tag parameter, if
// any, is appended.
var tagMessages = map[string]string{
	"required":      "is required",
	"min":           "must be at least",
	"max":           "must be at most",
	"gte":           "must be greater than or equal to",
	"lte":           "must be less than or equal to",
	"oneof":         "must be one of:",
	"hostname_port": "must be a host:port address",
}

// Validate checks s against its `validate` struct tags and reports failures
// as a VALIDATION_ERROR.
func Validate(s any) error {
	if err := ValidateWith(s, errors.Validation); err != nil {
		return err
	}
	return nil
}

// ValidateWith checks s like Validate but builds the failure with build, so
// callers choose the error code.
func ValidateWith(s any, build func(message string) *errors.AppError) *errors.AppError {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := stderrors.AsType[validator.ValidationErrors](err)
	if !ok {
		return build("validation failed").WithCause(err)
	}
	v := New()
	for _, fe := range fieldErrs {
		v.AddError(fieldPath(fe), describe(fe))
	}
	return v.ValidateWith(build)
}

// fieldPath drops the root struct name from the namespace, giving e.g.
// "stages[0].kind".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return toSnakeCase(fe.Field())
}

func describe(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if p := fe.Param(); p != "" {
		return msg + " " + p
	}
	return msg
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
