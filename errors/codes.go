package errors

import "net/http"

// ErrorCode is the machine-readable kind of an AppError.
type ErrorCode string

const (
	// ErrCodeNotFound: a referenced table or pipeline is not registered.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidPipeline: the stage sequence breaks the Scan ... Collect
	// shape or a stage carries the wrong parameters.
	ErrCodeInvalidPipeline ErrorCode = "INVALID_PIPELINE"
	// ErrCodeTypeMismatch: a parameter cannot be held by the element type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeInvalidInput: a request, flag or config value is malformed.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeCancelled: the execution's context ended first.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeInternal: anything else.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StatusClientClosedRequest is the non-standard status used for cancelled
// executions.
const StatusClientClosedRequest = 499

var codeStatus = map[ErrorCode]int{
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeInvalidPipeline: http.StatusBadRequest,
	ErrCodeTypeMismatch:    http.StatusUnprocessableEntity,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeCancelled:       StatusClientClosedRequest,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// HTTPStatus returns the response status for code; unknown codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the same request may succeed when repeated.
// Executions are pure, so only a cancelled one qualifies; every other code
// would fail again with the same input.
func (c ErrorCode) Retryable() bool {
	return c == ErrCodeCancelled
}
