package endpoint

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/flowkernel/observability"
)

// Health returns a handler that aggregates the given checkers. The response
// is 503 when any component is down.
func Health(serviceName, version string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := observability.CheckAll(c.Request.Context(), serviceName, version, checkers...)
		c.JSON(report.HTTPStatus(), gin.H{
			"status":     report.Status,
			"service":    report.Service,
			"version":    report.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": report.Components,
		})
	}
}
