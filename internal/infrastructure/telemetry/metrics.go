package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MeterName names the meter used for application instruments
const MeterName = "github.com/storefront/backend"

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	ServiceName       string
	Insecure          bool
}

// MeterProvider wraps the SDK MeterProvider with lifecycle management
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider creates a MeterProvider that periodically pushes to the
// collector and installs it globally.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval == 0 {
		interval = 60 * time.Second
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Meter returns the application meter, or a no-op meter when disabled
func (mp *MeterProvider) Meter() metric.Meter {
	if mp == nil || mp.provider == nil {
		return noop.NewMeterProvider().Meter(MeterName)
	}
	return mp.provider.Meter(MeterName)
}

// IsEnabled reports whether metrics are exported
func (mp *MeterProvider) IsEnabled() bool {
	return mp != nil && mp.provider != nil
}

// Shutdown flushes pending metrics
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.provider.Shutdown(ctx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
