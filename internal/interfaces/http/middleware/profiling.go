package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// Profiling labels the CPU samples taken while serving a request with its
// method and route, so flame graphs can be filtered per endpoint
func Profiling(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if !enabled || route == "" || route == "/health" {
			c.Next()
			return
		}
		telemetry.WithProfileLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}, "method", c.Request.Method, "route", route)
	}
}
