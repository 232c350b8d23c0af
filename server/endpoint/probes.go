package endpoint

import (
	"maps"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

var started = time.Now()

func uptime() string {
	return time.Since(started).Round(time.Second).String()
}

// Liveness answers as long as the process can serve HTTP. It never looks at
// the tables; readiness is the job of Health.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "alive",
			"service": serviceName,
			"uptime":  uptime(),
		})
	}
}

// Info describes the running build. Keys in extra are added to the body and
// cannot replace service, version, go_version or uptime.
func Info(serviceName, version string, extra map[string]any) gin.HandlerFunc {
	body := gin.H{}
	maps.Copy(body, extra)
	return func(c *gin.Context) {
		out := maps.Clone(body)
		out["service"] = serviceName
		out["version"] = version
		out["go_version"] = runtime.Version()
		out["uptime"] = uptime()
		c.JSON(http.StatusOK, out)
	}
}
