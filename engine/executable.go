package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/flowkernel/errors"
	"github.com/kbukum/flowkernel/logger"
	"github.com/kbukum/flowkernel/numeric"
	"github.com/kbukum/flowkernel/observability"
	"github.com/kbukum/flowkernel/plan"
)

// Executable is a validated pipeline bound to one strategy and one table.
// Every Execute instantiates a fresh operator chain and output, so it can
// run any number of times, also concurrently.
type Executable[T numeric.Number] struct {
	engine   *Engine[T]
	pipeline plan.Pipeline
	strategy plan.Strategy
	run      runFunc[T]
}

// Strategy returns the strategy the chain was wired for.
func (x *Executable[T]) Strategy() plan.Strategy { return x.strategy }

// Pipeline returns the description the chain was built from.
func (x *Executable[T]) Pipeline() plan.Pipeline { return x.pipeline }

// Execute runs the chain and returns a freshly allocated result. On error
// the result is nil; a cancelled or expired ctx yields CANCELLED.
func (x *Executable[T]) Execute(ctx context.Context, opts RunOptions) ([]T, error) {
	if opts.Limit < 0 {
		return nil, apperrors.InvalidInput("limit", "limit must not be negative")
	}
	if opts.ExecutionID == "" {
		opts.ExecutionID = uuid.NewString()
	}
	ctx = logger.ContextWithExecutionID(ctx, opts.ExecutionID)
	strategy := string(x.strategy)
	o := x.engine.opts

	var span trace.Span
	if o.tracing {
		ctx, span = observability.StartSpan(ctx, observability.SpanRun,
			observability.AttrExecutionID.String(opts.ExecutionID),
			observability.AttrPipeline.String(x.pipeline.Name),
			observability.AttrStrategy.String(strategy),
			observability.AttrStages.Int(len(x.pipeline.Stages)),
			observability.AttrLimit.Int(opts.Limit),
		)
		defer span.End()
	}
	if o.metrics != nil {
		o.metrics.RecordRunStart(ctx, strategy)
	}

	start := time.Now()
	out, err := x.run(ctx, opts.Limit)
	duration := time.Since(start)

	log := o.log.WithContext(ctx)
	fields := logger.Fields(
		logger.FieldPipeline, x.pipeline.Name,
		logger.FieldStrategy, strategy,
		logger.FieldStages, len(x.pipeline.Stages),
		logger.FieldDuration, duration.Milliseconds(),
	)

	if err != nil {
		appErr := apperrors.From(err)
		if span != nil {
			observability.SetSpanError(span, appErr)
			span.SetAttributes(observability.AttrErrorCode.String(string(appErr.Code)))
		}
		if o.metrics != nil {
			o.metrics.RecordError(ctx, string(appErr.Code), strategy)
			o.metrics.RecordRunEnd(ctx, strategy, "error", 0, duration)
		}
		log.Debug("pipeline execution failed", logger.AddError(fields, appErr))
		return nil, appErr
	}

	if span != nil {
		span.SetAttributes(observability.AttrItems.Int(len(out)))
	}
	if o.metrics != nil {
		o.metrics.RecordRunEnd(ctx, strategy, "ok", len(out), duration)
	}
	fields[logger.FieldItems] = len(out)
	log.Debug("pipeline executed", fields)
	return out, nil
}
