package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ginLoggerKey = "logger"

// GinMiddleware logs every request and stores a request-scoped logger both in
// the gin context and in the request's context.Context.
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := c.GetString("request_id")
		ctx, reqLogger := WithRequestID(c.Request.Context(), logger, requestID)
		reqLogger = WithTraceContext(ctx, reqLogger.With(
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		))
		c.Set(ginLoggerKey, reqLogger)
		c.Request = c.Request.WithContext(WithContext(ctx, reqLogger))

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("route", c.FullPath()),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if userID := c.GetInt64("user_id"); userID != 0 {
			fields = append(fields, zap.Int64("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		msg := "HTTP Request"
		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error(msg, fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn(msg, fields...)
		default:
			reqLogger.Info(msg, fields...)
		}
	}
}

// Recovery turns a handler panic into a logged 500
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.String("request_id", c.GetString("request_id")),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
			}
		}()
		c.Next()
	}
}

// GetGinLogger retrieves the request logger from gin context
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}

// SetGinLogger replaces the request logger, e.g. after authentication adds
// the user id
func SetGinLogger(c *gin.Context, l *zap.Logger) {
	c.Set(ginLoggerKey, l)
	c.Request = c.Request.WithContext(WithContext(c.Request.Context(), l))
}
