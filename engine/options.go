package engine

import (
	"github.com/kbukum/flowkernel/logger"
	"github.com/kbukum/flowkernel/observability"
	"github.com/kbukum/flowkernel/plan"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	log             *logger.Logger
	metrics         *observability.Metrics
	tracing         bool
	defaultStrategy plan.Strategy
}

// WithLogger sets the logger executions are reported to.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records every execution on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracing wraps every execution in a span.
func WithTracing(enabled bool) Option {
	return func(o *options) { o.tracing = enabled }
}

// WithDefaultStrategy sets the strategy used when neither the caller nor the
// pipeline names one. The default is pull.
func WithDefaultStrategy(s plan.Strategy) Option {
	return func(o *options) { o.defaultStrategy = s }
}

// RunOptions controls a single execution.
type RunOptions struct {
	// Limit stops the execution after Limit values. Zero means no limit.
	Limit int
	// ExecutionID identifies the execution in logs and spans. A random one
	// is generated when empty.
	ExecutionID string
}

// RunOption adjusts RunOptions.
type RunOption func(*RunOptions)

// WithLimit sets RunOptions.Limit.
func WithLimit(n int) RunOption {
	return func(o *RunOptions) { o.Limit = n }
}

// WithExecutionID sets RunOptions.ExecutionID.
func WithExecutionID(id string) RunOption {
	return func(o *RunOptions) { o.ExecutionID = id }
}
