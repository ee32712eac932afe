package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request through otelgin. After the
// handler ran it adds the request id and user id, and marks 5xx responses
// as errors.
func Tracing(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/health"
	}))
	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if id := c.GetString("request_id"); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if userID, ok := GetUserID(c); ok {
			span.SetAttributes(attribute.String("user_id", strconv.FormatInt(userID, 10)))
		}
		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
