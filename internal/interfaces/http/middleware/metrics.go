package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// HTTPMetrics records request count, latency and in-flight requests. The
// route label is the matched pattern so ids do not explode cardinality.
func HTTPMetrics(m *telemetry.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		done := m.Begin(c.Request.Context())

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		done(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
