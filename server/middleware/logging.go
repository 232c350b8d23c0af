package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/kbukum/flowkernel/logger"
)

var quietPaths = []string{"/health", "/alive"}

const slowRequest = 500 * time.Millisecond

// RequestLogger logs every request with method, path, status code and
// duration. Probe endpoints are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(quietPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, rec.Status(),
				"bytes", rec.bytes,
				logger.FieldDuration, duration.Milliseconds(),
				logger.FieldRequestID, r.Header.Get(HeaderRequestID),
			)
			if duration > slowRequest {
				fields["slow"] = true
			}
			logByStatus(log, fields, rec.Status())
		})
	}
}

// logByStatus logs request fields at a level chosen by the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
