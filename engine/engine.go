package engine

import (
	"context"
	"fmt"
	"slices"

	apperrors "github.com/kbukum/flowkernel/errors"
	"github.com/kbukum/flowkernel/logger"
	"github.com/kbukum/flowkernel/numeric"
	"github.com/kbukum/flowkernel/pipeline"
	"github.com/kbukum/flowkernel/plan"
	"github.com/kbukum/flowkernel/push"
	"github.com/kbukum/flowkernel/table"
)

// Engine builds and runs pipelines over the tables of one store.
// Safe for concurrent use.
type Engine[T numeric.Number] struct {
	store *table.Store[T]
	opts  options
}

// New creates an Engine over store.
func New[T numeric.Number](store *table.Store[T], opts ...Option) *Engine[T] {
	o := options{defaultStrategy: plan.Pull}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("engine")
	} else {
		o.log = o.log.WithComponent("engine")
	}
	return &Engine[T]{store: store, opts: o}
}

// Store returns the store tables are resolved from.
func (e *Engine[T]) Store() *table.Store[T] { return e.store }

// Build validates p and wires its operator chain for strategy s. An empty s
// falls back to p.Strategy, then to the engine default.
//
// Errors: INVALID_PIPELINE for a malformed chain, NOT_FOUND when the scanned
// table is not registered, TYPE_MISMATCH when a parameter cannot be
// represented as T, INVALID_INPUT for an unknown strategy.
func (e *Engine[T]) Build(p plan.Pipeline, s plan.Strategy) (*Executable[T], error) {
	if s == "" {
		s = p.Strategy
	}
	strategy, err := plan.ParseStrategy(string(s), e.opts.defaultStrategy)
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(p); err != nil {
		return nil, err
	}
	snap, err := e.store.Lookup(p.Table())
	if err != nil {
		return nil, err
	}
	return e.build(p, strategy, snap)
}

// build wires p over seq. p must already be valid.
func (e *Engine[T]) build(p plan.Pipeline, s plan.Strategy, seq table.Sequence[T]) (*Executable[T], error) {
	steps, err := compile[T](p)
	if err != nil {
		return nil, err
	}
	x := &Executable[T]{engine: e, pipeline: p, strategy: s}
	switch s {
	case plan.Pull:
		x.run = pullRunner(seq, steps)
	case plan.Push:
		x.run = pushRunner(seq, steps)
	default:
		return nil, apperrors.InvalidInput("strategy", fmt.Sprintf("unknown strategy %q", s))
	}
	return x, nil
}

// Run builds p for s and executes it once.
func (e *Engine[T]) Run(ctx context.Context, p plan.Pipeline, s plan.Strategy, opts ...RunOption) ([]T, error) {
	x, err := e.Build(p, s)
	if err != nil {
		return nil, err
	}
	var ro RunOptions
	for _, opt := range opts {
		opt(&ro)
	}
	return x.Execute(ctx, ro)
}

// Comparison holds the output of both strategies for one pipeline.
type Comparison[T numeric.Number] struct {
	Pull  []T
	Push  []T
	Equal bool
}

// Compare runs p under both strategies without a limit.
func (e *Engine[T]) Compare(ctx context.Context, p plan.Pipeline) (*Comparison[T], error) {
	pulled, err := e.Run(ctx, p, plan.Pull)
	if err != nil {
		return nil, err
	}
	pushed, err := e.Run(ctx, p, plan.Push)
	if err != nil {
		return nil, err
	}
	return &Comparison[T]{Pull: pulled, Push: pushed, Equal: slices.Equal(pulled, pushed)}, nil
}

// step is an interior stage with its parameter converted to T: keep for a
// filter, factor for a map.
type step[T numeric.Number] struct {
	kind   plan.Kind
	keep   func(T) bool
	factor T
}

func compile[T numeric.Number](p plan.Pipeline) ([]step[T], error) {
	interior := p.Stages[1 : len(p.Stages)-1]
	steps := make([]step[T], 0, len(interior))
	for i, op := range interior {
		st := step[T]{kind: op.Kind}
		var err error
		switch op.Kind {
		case plan.KindFilter:
			st.keep, err = numeric.GreaterThan[T](fmt.Sprintf("stages[%d].threshold", i+1), *op.Threshold)
		case plan.KindMap:
			st.factor, err = numeric.Convert[T](fmt.Sprintf("stages[%d].multiplier", i+1), *op.Multiplier)
		default:
			return nil, apperrors.InvalidStage(i+1, fmt.Sprintf("unexpected %s stage", op.Kind))
		}
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, nil
}

type runFunc[T any] func(ctx context.Context, limit int) ([]T, error)

// pullRunner chains iterators outward from the scan. The chain is a lazy
// factory, so every run instantiates fresh iterators with their own cursor.
func pullRunner[T numeric.Number](seq table.Sequence[T], steps []step[T]) runFunc[T] {
	chain := pipeline.Scan(seq)
	for _, st := range steps {
		switch st.kind {
		case plan.KindFilter:
			chain = pipeline.Filter(chain, st.keep)
		case plan.KindMap:
			chain = pipeline.Scale(chain, st.factor)
		}
	}
	return func(ctx context.Context, limit int) ([]T, error) {
		return pipeline.CollectN(ctx, chain, limit)
	}
}

// pushRunner wires stages inward from a fresh collector on each run, so
// concurrent runs never share output.
func pushRunner[T numeric.Number](seq table.Sequence[T], steps []step[T]) runFunc[T] {
	return func(ctx context.Context, limit int) ([]T, error) {
		sink := push.NewCollector[T](limit)
		var head push.Stage[T] = sink
		for i := len(steps) - 1; i >= 0; i-- {
			switch steps[i].kind {
			case plan.KindFilter:
				head = push.Filter(steps[i].keep, head)
			case plan.KindMap:
				head = push.Scale(steps[i].factor, head)
			}
		}
		if err := push.NewScan(seq, head).Execute(ctx); err != nil {
			return nil, err
		}
		return sink.Values(), nil
	}
}
