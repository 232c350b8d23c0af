package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback. Start and ready hooks abort startup on
// error; stop hooks only report.
type Hook func(ctx context.Context) error

// OnStart appends hooks that acquire resources, run first to last.
func (a *App[C]) OnStart(hooks ...Hook) { a.onStart = append(a.onStart, hooks...) }

// OnReady appends hooks run once every start hook has succeeded.
func (a *App[C]) OnReady(hooks ...Hook) { a.onReady = append(a.onReady, hooks...) }

// OnStop appends hooks that release resources. They run last to first.
func (a *App[C]) OnStop(hooks ...Hook) { a.onStop = append(a.onStop, hooks...) }

func runHooks(ctx context.Context, phase string, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook #%d: %w", phase, i+1, err)
		}
	}
	return nil
}
