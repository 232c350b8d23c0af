package errors

import (
	"fmt"
	"maps"
)

// AppError is the error type returned across package boundaries.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	// Cause is logged but never serialized.
	Cause error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithStatus overrides the status derived from the code.
func (e *AppError) WithStatus(status int) *AppError {
	e.HTTPStatus = status
	return e
}

// WithDetails merges details into the error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// New builds an AppError whose status and retryability follow from code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: code.HTTPStatus(),
		Retryable:  code.Retryable(),
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// NotFound reports an unknown resource, e.g. NotFound("table", "main").
func NotFound(resource, id string) *AppError {
	if id == "" {
		return Newf(ErrCodeNotFound, "The requested %s was not found.", resource).
			WithDetail("resource", resource)
	}
	return Newf(ErrCodeNotFound, "The requested %s %q was not found.", resource, id).
		WithDetails(map[string]any{"resource": resource, "id": id})
}

// InvalidPipeline reports a description that is not Scan, zero or more
// Filter/Map, Collect.
func InvalidPipeline(reason string) *AppError {
	return Newf(ErrCodeInvalidPipeline, "Invalid pipeline: %s", reason)
}

// InvalidStage is InvalidPipeline pinned to the stage at index.
func InvalidStage(index int, reason string) *AppError {
	return InvalidPipeline(fmt.Sprintf("stage %d: %s", index, reason)).
		WithDetail("stage", index)
}

// TypeMismatch reports a parameter the element type cannot hold.
func TypeMismatch(param, detail string) *AppError {
	return Newf(ErrCodeTypeMismatch, "Parameter %s is incompatible with the element type: %s", param, detail).
		WithDetail("param", param)
}

// InvalidInput reports a malformed request value. An empty field is left
// out of the details.
func InvalidInput(field, reason string) *AppError {
	err := New(ErrCodeInvalidInput, "Invalid input: "+reason)
	if field != "" {
		err.WithDetail("field", field)
	}
	return err
}

// Validation carries an already formatted validation message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// Cancelled wraps the context error that stopped an execution.
func Cancelled(cause error) *AppError {
	return New(ErrCodeCancelled, "The execution was cancelled.").WithCause(cause)
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.").WithCause(cause)
}

// IsCode reports whether err is, or wraps, an AppError with code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
