package pipeline

import (
	"cmp"
	"context"

	"github.com/kbukum/flowkernel/numeric"
)

// latch turns a step function into an Iterator whose end is sticky: once
// step reports the end or an error, it is never called again.
type latch[T any] struct {
	step  func(context.Context) (T, bool, error)
	close func() error
	done  bool
}

func newLatch[T any](step func(context.Context) (T, bool, error), closeFn func() error) *latch[T] {
	return &latch[T]{step: step, close: closeFn}
}

func (l *latch[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if l.done {
		return zero, false, nil
	}
	v, ok, err := l.step(ctx)
	if err != nil || !ok {
		l.done = true
		return zero, false, err
	}
	return v, true, nil
}

func (l *latch[T]) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

// stage appends an operator to p. build receives the upstream iterator of
// one chain instance and returns that instance's step function.
func stage[I, O any](p *Pipeline[I], build func(up Iterator[I]) func(context.Context) (O, bool, error)) *Pipeline[O] {
	return &Pipeline[O]{create: func(ctx context.Context) Iterator[O] {
		up := p.create(ctx)
		return newLatch(build(up), up.Close)
	}}
}

// Map applies fn to every value, pulling upstream exactly once per Next.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return stage(p, func(up Iterator[I]) func(context.Context) (O, bool, error) {
		return func(ctx context.Context) (O, bool, error) {
			var zero O
			v, ok, err := up.Next(ctx)
			if err != nil || !ok {
				return zero, false, err
			}
			out, err := fn(ctx, v)
			if err != nil {
				return zero, false, err
			}
			return out, true, nil
		}
	})
}

// Scale multiplies every value by multiplier. Integer overflow wraps.
func Scale[T numeric.Number](p *Pipeline[T], multiplier T) *Pipeline[T] {
	return Map(p, func(_ context.Context, v T) (T, error) { return v * multiplier, nil })
}

// Filter passes on the values keep accepts. One Next may pull upstream many
// times; it terminates because upstream is finite.
func Filter[T any](p *Pipeline[T], keep func(T) bool) *Pipeline[T] {
	return stage(p, func(up Iterator[T]) func(context.Context) (T, bool, error) {
		return func(ctx context.Context) (T, bool, error) {
			for {
				v, ok, err := up.Next(ctx)
				if err != nil || !ok || keep(v) {
					return v, ok, err
				}
			}
		}
	})
}

// FilterGreater keeps values strictly greater than threshold.
func FilterGreater[T cmp.Ordered](p *Pipeline[T], threshold T) *Pipeline[T] {
	return Filter(p, func(v T) bool { return v > threshold })
}

// Tap calls fn on every value and passes it on unchanged.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return Map(p, func(ctx context.Context, v T) (T, error) { return v, fn(ctx, v) })
}
