// Package observability wires OpenTelemetry tracing and metrics into
// pipeline executions and reports component health.
//
// Setup starts the OTLP/HTTP providers that Config enables and installs
// them globally:
//
//	providers, err := observability.Setup(ctx, observability.Config{
//		ServiceName:    "flowkernel",
//		TracingEnabled: true,
//		Endpoint:       "localhost:4318",
//	})
//	defer providers.Shutdown(ctx)
//
// Spans carry typed attributes:
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanRun,
//		observability.AttrStrategy.String("pull"))
//	defer span.End()
package observability
