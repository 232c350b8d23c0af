package observability

import (
	"context"
	"errors"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config selects which signals are exported and where.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TracingEnabled bool
	MetricsEnabled bool
	Endpoint       string
	Insecure       bool
	SampleRate     float64
	Interval       time.Duration
}

// Providers owns the SDK providers started by Setup.
type Providers struct {
	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider

	// Metrics is nil unless metrics export is enabled.
	Metrics *Metrics
}

// Setup starts the providers enabled in cfg. With nothing enabled it returns
// empty Providers and the global no-op providers stay in place.
func Setup(ctx context.Context, cfg Config) (*Providers, error) {
	p := &Providers{}
	if cfg.TracingEnabled {
		tp, err := InitTracer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.tracer = tp
	}
	if cfg.MetricsEnabled {
		mp, err := InitMeter(ctx, cfg)
		if err != nil {
			return nil, errors.Join(err, p.Shutdown(ctx))
		}
		p.meter = mp
		m, err := NewMetrics(Meter())
		if err != nil {
			return nil, errors.Join(err, p.Shutdown(ctx))
		}
		p.Metrics = m
	}
	return p, nil
}

// Shutdown flushes and stops the started providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracer != nil {
		errs = append(errs, p.tracer.Shutdown(ctx))
	}
	if p.meter != nil {
		errs = append(errs, p.meter.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
