package pipeline

import (
	"context"

	"github.com/kbukum/flowkernel/table"
)

// Iterator yields a finite stream on demand.
type Iterator[T any] interface {
	// Next returns the next value, or ok=false once the stream has ended.
	// After the end, or after an error, every call reports the end again.
	Next(ctx context.Context) (v T, ok bool, err error)
	Close() error
}

// Pipeline is a lazy description of a linear chain. Iter builds a fresh
// chain of iterators each time, so one Pipeline can run many times.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// Iter instantiates the chain. The caller closes the result.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.create(ctx)
}

// Scan reads seq by index, one element per Next. seq is borrowed, never
// copied; each iterator owns only its position.
func Scan[T any](seq table.Sequence[T]) *Pipeline[T] {
	return &Pipeline[T]{create: func(context.Context) Iterator[T] {
		var pos int
		return newLatch(func(ctx context.Context) (T, bool, error) {
			var zero T
			if pos >= seq.Len() {
				return zero, false, nil
			}
			if err := ctx.Err(); err != nil {
				return zero, false, err
			}
			v := seq.At(pos)
			pos++
			return v, true, nil
		}, nil)
	}}
}

// FromSlice scans items.
func FromSlice[T any](items []T) *Pipeline[T] {
	return Scan[T](sliceSeq[T](items))
}

// From adapts an existing iterator. The result can only be consumed once.
func From[T any](it Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: func(context.Context) Iterator[T] { return it }}
}

// Collect pulls p to the end and returns the values in order. On error the
// values gathered so far come back with it.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	return CollectN(ctx, p, 0)
}

// CollectN stops pulling once it holds n values; n <= 0 means no limit.
// Upstream elements past the n-th accepted value are never visited.
func CollectN[T any](ctx context.Context, p *Pipeline[T], n int) ([]T, error) {
	out := make([]T, 0)
	err := pull(ctx, p, func(_ context.Context, v T) (bool, error) {
		out = append(out, v)
		return n <= 0 || len(out) < n, nil
	})
	return out, err
}

// ForEach pulls p to the end, handing each value to fn. An error from fn
// stops the pull and is returned as is.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return pull(ctx, p, func(ctx context.Context, v T) (bool, error) {
		return true, fn(ctx, v)
	})
}

// pull drives a fresh chain until it ends, fails, or yield declines more.
func pull[T any](ctx context.Context, p *Pipeline[T], yield func(context.Context, T) (bool, error)) error {
	it := p.create(ctx)
	defer it.Close()
	for {
		v, ok, err := it.Next(ctx)
		if err != nil || !ok {
			return err
		}
		more, err := yield(ctx, v)
		if err != nil || !more {
			return err
		}
	}
}

type sliceSeq[T any] []T

func (s sliceSeq[T]) Len() int   { return len(s) }
func (s sliceSeq[T]) At(i int) T { return s[i] }
