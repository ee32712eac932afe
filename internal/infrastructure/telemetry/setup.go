package telemetry

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// Providers bundles every telemetry pipeline the server starts
type Providers struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	cfg      config.TelemetryConfig
}

// Setup starts the configured pipelines. The log pipeline is started first
// so its zap core can be attached to the logger before anything else logs.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	p := &Providers{cfg: cfg}
	var err error

	if p.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Enabled:           cfg.Enabled && cfg.LogsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}); err != nil {
		return nil, err
	}

	if p.Tracer, err = NewTracerProvider(ctx, Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}

	if p.Meter, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.Enabled && cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsInterval,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}

	if p.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.PyroscopeAddress,
		ApplicationName: cfg.ServiceName,
	}, logger); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	if p.Profiler.IsEnabled() {
		p.Tracer.EnableSpanProfiles()
	}

	return p, nil
}

// LogCore returns the zap core feeding the OTLP log pipeline
func (p *Providers) LogCore() zapcore.Core {
	level, err := zapcore.ParseLevel(p.cfg.LogsLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return p.Logs.NewZapCore(p.cfg.ServiceName, level)
}

// DBConfig derives the database instrumentation config
func (p *Providers) DBConfig(dbSystem string) DBConfig {
	return DBConfig{
		TraceEnabled:    p.cfg.Enabled && p.cfg.DBTraceEnabled,
		LogFullSQL:      p.cfg.DBLogFullSQL,
		SlowQueryThresh: p.cfg.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}
}

// Shutdown stops every started pipeline, profiler first
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Profiler != nil {
		errs = append(errs, p.Profiler.Stop(ctx))
	}
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
