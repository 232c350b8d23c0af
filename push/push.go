package push

import (
	"cmp"
	"context"
	"errors"

	"github.com/kbukum/flowkernel/numeric"
	"github.com/kbukum/flowkernel/table"
)

// ErrStop is returned by a stage to ask the producer to stop sending. Scan
// treats it as a clean end of execution, not a failure.
var ErrStop = errors.New("push: stop requested")

// Stage accepts one value and forwards zero or more values downstream.
type Stage[T any] interface {
	Push(ctx context.Context, v T) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc[T any] func(ctx context.Context, v T) error

// Push calls f(ctx, v).
func (f StageFunc[T]) Push(ctx context.Context, v T) error { return f(ctx, v) }

// --- Source ---

// Scan is the source of a push chain.
type Scan[T any] struct {
	seq        table.Sequence[T]
	downstream Stage[T]
}

// NewScan creates a Scan over seq feeding downstream. seq is borrowed.
func NewScan[T any](seq table.Sequence[T], downstream Stage[T]) *Scan[T] {
	return &Scan[T]{seq: seq, downstream: downstream}
}

// Execute pushes every element of the sequence downstream, in order. It
// returns nil when the sequence is exhausted or a stage returned ErrStop,
// the context error if ctx is done before an element is pushed, and any
// other stage error as is.
func (s *Scan[T]) Execute(ctx context.Context) error {
	n := s.seq.Len()
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.downstream.Push(ctx, s.seq.At(i)); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// --- Intermediate stages ---

type filterStage[T any] struct {
	pred       func(T) bool
	downstream Stage[T]
}

// Filter forwards only the values for which pred holds.
func Filter[T any](pred func(T) bool, downstream Stage[T]) Stage[T] {
	return &filterStage[T]{pred: pred, downstream: downstream}
}

// FilterGreater forwards only values strictly greater than threshold.
func FilterGreater[T cmp.Ordered](threshold T, downstream Stage[T]) Stage[T] {
	return Filter(func(v T) bool { return v > threshold }, downstream)
}

func (s *filterStage[T]) Push(ctx context.Context, v T) error {
	if !s.pred(v) {
		return nil
	}
	return s.downstream.Push(ctx, v)
}

type mapStage[I, O any] struct {
	fn         func(context.Context, I) (O, error)
	downstream Stage[O]
}

// Map forwards fn(v) exactly once per value.
func Map[I, O any](fn func(context.Context, I) (O, error), downstream Stage[O]) Stage[I] {
	return &mapStage[I, O]{fn: fn, downstream: downstream}
}

// Scale forwards v * multiplier.
func Scale[T numeric.Number](multiplier T, downstream Stage[T]) Stage[T] {
	return Map(func(_ context.Context, v T) (T, error) {
		return v * multiplier, nil
	}, downstream)
}

func (s *mapStage[I, O]) Push(ctx context.Context, v I) error {
	out, err := s.fn(ctx, v)
	if err != nil {
		return err
	}
	return s.downstream.Push(ctx, out)
}

type tapStage[T any] struct {
	fn         func(context.Context, T) error
	downstream Stage[T]
}

// Tap calls fn as a side effect and forwards the value unchanged.
func Tap[T any](fn func(context.Context, T) error, downstream Stage[T]) Stage[T] {
	return &tapStage[T]{fn: fn, downstream: downstream}
}

func (s *tapStage[T]) Push(ctx context.Context, v T) error {
	if err := s.fn(ctx, v); err != nil {
		return err
	}
	return s.downstream.Push(ctx, v)
}

// --- Sink ---

// Collector is the terminal stage. It holds the only mutable state of a
// push chain: the output sequence.
type Collector[T any] struct {
	values []T
	limit  int
}

// NewCollector creates a Collector. With limit > 0 it returns ErrStop once
// it holds limit values.
func NewCollector[T any](limit int) *Collector[T] {
	return &Collector[T]{values: make([]T, 0), limit: limit}
}

// Push appends v in arrival order.
func (c *Collector[T]) Push(_ context.Context, v T) error {
	if c.full() {
		return ErrStop
	}
	c.values = append(c.values, v)
	if c.full() {
		return ErrStop
	}
	return nil
}

func (c *Collector[T]) full() bool {
	return c.limit > 0 && len(c.values) >= c.limit
}

// Values hands the collected output to the caller. The Collector starts
// over with an empty output and keeps no reference to the returned slice.
func (c *Collector[T]) Values() []T {
	out := c.values
	c.values = make([]T, 0)
	return out
}

// Len returns the number of values collected so far.
func (c *Collector[T]) Len() int { return len(c.values) }
