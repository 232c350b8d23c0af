package logger

import "time"

// Field keys shared by every component.
const (
	FieldComponent   = "component"
	FieldTraceID     = "trace_id"
	FieldSpanID      = "span_id"
	FieldRequestID   = "request_id"
	FieldExecutionID = "execution_id"
	FieldPipeline    = "pipeline"
	FieldStrategy    = "strategy"
	FieldTable       = "table"
	FieldStages      = "stages"
	FieldItems       = "items"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
)

// Fields pairs up kvs as key, value, key, value. Non-string keys and a
// trailing key without a value are dropped.
//
//	logger.Info("table loaded", logger.Fields(logger.FieldTable, "main", "rows", 5))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 1; i < len(kvs); i += 2 {
		if key, ok := kvs[i-1].(string); ok {
			m[key] = kvs[i]
		}
	}
	return m
}

// Failed describes a failed operation.
func Failed(op string, err error) map[string]any {
	return Fields(FieldOperation, op, FieldError, err.Error())
}

// Took describes an operation that finished after d.
func Took(op string, d time.Duration) map[string]any {
	return Fields(FieldOperation, op, FieldDuration, d.Milliseconds())
}

// AddError sets the error field on fields, allocating when fields is nil.
func AddError(fields map[string]any, err error) map[string]any {
	if fields == nil {
		fields = map[string]any{}
	}
	fields[FieldError] = err.Error()
	return fields
}
