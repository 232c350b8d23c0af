package middleware

import (
	"net/http"

	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/kbukum/flowkernel/observability"
)

// Tracing starts an http.request span around each request. Spans are only
// recorded when a tracer provider is installed.
func Tracing() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), observability.SpanHTTPRequest,
				semconv.HTTPMethodKey.String(r.Method),
				observability.AttrURLPath.String(r.URL.Path),
				observability.AttrRequestID.String(r.Header.Get(HeaderRequestID)),
			)
			defer span.End()

			rec := record(w)
			next.ServeHTTP(rec, r.WithContext(ctx))
			span.SetAttributes(
				semconv.HTTPStatusCodeKey.Int(rec.Status()),
				observability.AttrBodySize.Int(rec.bytes),
			)
		})
	}
}
