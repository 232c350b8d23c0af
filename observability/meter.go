package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/flowkernel/logger"
)

// Metric attribute keys.
const (
	metricStrategy = attribute.Key("strategy")
	metricStatus   = attribute.Key("status")
	metricCode     = attribute.Key("code")
)

// InitMeter starts an OTLP/HTTP meter provider exporting every
// cfg.Interval and installs it as the global provider. The caller shuts it
// down.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns the flowkernel meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics records pipeline executions.
type Metrics struct {
	runs     metric.Int64Counter
	failures metric.Int64Counter
	active   metric.Int64UpDownCounter
	duration metric.Float64Histogram
	items    metric.Int64Histogram
}

// NewMetrics creates the execution instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m    Metrics
		err  error
		errs []error
	)
	m.runs, err = meter.Int64Counter("flowkernel.runs",
		metric.WithDescription("Finished pipeline executions"), metric.WithUnit("{run}"))
	errs = append(errs, err)
	m.failures, err = meter.Int64Counter("flowkernel.run.failures",
		metric.WithDescription("Failed pipeline executions by error code"), metric.WithUnit("{run}"))
	errs = append(errs, err)
	m.active, err = meter.Int64UpDownCounter("flowkernel.runs.active",
		metric.WithDescription("Pipeline executions in progress"), metric.WithUnit("{run}"))
	errs = append(errs, err)
	m.duration, err = meter.Float64Histogram("flowkernel.run.duration",
		metric.WithDescription("Duration of pipeline executions"), metric.WithUnit("s"))
	errs = append(errs, err)
	m.items, err = meter.Int64Histogram("flowkernel.run.items",
		metric.WithDescription("Values emitted per pipeline execution"), metric.WithUnit("{value}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("creating instruments: %w", err)
	}
	return &m, nil
}

// RecordRunStart marks an execution as in progress.
func (m *Metrics) RecordRunStart(ctx context.Context, strategy string) {
	m.active.Add(ctx, 1, metric.WithAttributes(metricStrategy.String(strategy)))
}

// RecordRunEnd records a finished execution; status is "ok" or "error".
func (m *Metrics) RecordRunEnd(ctx context.Context, strategy, status string, items int, d time.Duration) {
	byStrategy := metric.WithAttributes(metricStrategy.String(strategy))
	m.active.Add(ctx, -1, byStrategy)
	m.runs.Add(ctx, 1, metric.WithAttributes(metricStrategy.String(strategy), metricStatus.String(status)))
	m.duration.Record(ctx, d.Seconds(), byStrategy)
	m.items.Record(ctx, int64(items), byStrategy)
}

// RecordError counts a failed execution under its error code.
func (m *Metrics) RecordError(ctx context.Context, code, strategy string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(metricCode.String(code), metricStrategy.String(strategy)))
}
