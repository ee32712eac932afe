package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsConfig holds OTLP log export configuration
type LogsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
}

// LoggerProvider wraps the SDK LoggerProvider with lifecycle management
type LoggerProvider struct {
	provider *sdklog.LoggerProvider
}

// NewLoggerProvider creates a LoggerProvider exporting over OTLP gRPC
func NewLoggerProvider(ctx context.Context, cfg LogsConfig) (*LoggerProvider, error) {
	lp := &LoggerProvider{}
	if !cfg.Enabled {
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	lp.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.provider)
	return lp, nil
}

// IsEnabled reports whether logs are exported
func (lp *LoggerProvider) IsEnabled() bool {
	return lp != nil && lp.provider != nil
}

// Shutdown flushes buffered records
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if !lp.IsEnabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := lp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown logger provider: %w", err)
	}
	return nil
}

// NewZapCore returns a zap core that forwards entries at or above minLevel
// to the OTLP log pipeline. It is a no-op core when logs are disabled.
func (lp *LoggerProvider) NewZapCore(serviceName string, minLevel zapcore.Level) zapcore.Core {
	if !lp.IsEnabled() {
		return zapcore.NewNopCore()
	}
	core := otelzap.NewCore(serviceName, otelzap.WithLoggerProvider(lp.provider))
	return &levelFilterCore{Core: core, minLevel: minLevel}
}

// levelFilterCore drops entries below minLevel
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
}

func (c *levelFilterCore) Enabled(level zapcore.Level) bool {
	return level >= c.minLevel && c.Core.Enabled(level)
}

func (c *levelFilterCore) With(fields []zap.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), minLevel: c.minLevel}
}

func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}
