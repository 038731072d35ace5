package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aslabkom/announcer-api/internal/service"
)

// Metrics records per-request metrics using the route template as the path
// label, keeping cardinality bounded.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(started))
	}
}
