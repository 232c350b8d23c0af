package bootstrap

import (
	"time"

	"github.com/kbukum/flowkernel/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// Option configures NewApp.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
}

// WithLogger uses l instead of initialising the global logger from the
// config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds the time stop hooks may take. Non-positive
// values keep the default of 15s.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		if d > 0 {
			o.gracefulTimeout = d
		}
	}
}
