package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config holds tracing configuration
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// TracerProvider wraps the SDK TracerProvider with lifecycle management
type TracerProvider struct {
	provider            *sdktrace.TracerProvider
	logger              *zap.Logger
	config              Config
	mu                  sync.Mutex
	spanProfilesEnabled bool
}

// NewTracerProvider creates a TracerProvider exporting over OTLP gRPC and
// installs it globally. A disabled config yields a no-op provider.
func NewTracerProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{logger: logger, config: cfg}
	if !cfg.Enabled {
		logger.Info("Tracing disabled")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	tp.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(newSampler(cfg.SamplingRatio))),
	)
	otel.SetTracerProvider(tp.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
	)
	return tp, nil
}

func newSampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(ratio)
	}
}

// EnableSpanProfiles tags CPU profiles with the span that produced them.
// The Pyroscope profiler must already be running.
func (tp *TracerProvider) EnableSpanProfiles() {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.provider == nil || tp.spanProfilesEnabled {
		return
	}
	otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp.provider))
	tp.spanProfilesEnabled = true
	tp.logger.Info("Span profiles enabled")
}

// Shutdown flushes pending spans and stops the exporter
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := tp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}

// Tracer returns a named tracer
func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.provider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.provider.Tracer(name, opts...)
}

// IsEnabled reports whether spans are exported
func (tp *TracerProvider) IsEnabled() bool {
	return tp.provider != nil
}
