package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID records the request id and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithUserID records the authenticated user and returns the enriched logger
func WithUserID(ctx context.Context, logger *zap.Logger, userID int64) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, userIDKey, userID)
	enriched := logger.With(zap.Int64("user_id", userID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves the request id from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUserID retrieves the authenticated user id, or 0
func GetUserID(ctx context.Context) int64 {
	if userID, ok := ctx.Value(userIDKey).(int64); ok {
		return userID
	}
	return 0
}

// GetTraceID returns the trace id of the active span, or ""
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// WithTraceContext adds trace_id and span_id of the active span to logger
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}

// L returns the context logger with trace correlation fields.
//
//	logger.L(ctx).Info("Order placed", zap.Int64("order_id", id))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
