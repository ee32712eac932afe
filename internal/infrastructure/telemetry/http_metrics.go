package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records request counts and latency per route
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

// NewHTTPMetrics registers the HTTP server instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter("http_server_requests_total",
		metric.WithDescription("HTTP requests served"))
	if err != nil {
		return nil, fmt.Errorf("http requests counter: %w", err)
	}
	duration, err := meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5))
	if err != nil {
		return nil, fmt.Errorf("http duration histogram: %w", err)
	}
	inFlight, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Requests currently being served"))
	if err != nil {
		return nil, fmt.Errorf("http in-flight counter: %w", err)
	}
	return &HTTPMetrics{requests: requests, duration: duration, inFlight: inFlight}, nil
}

// Begin marks a request as in flight. The returned func records completion.
func (m *HTTPMetrics) Begin(ctx context.Context) func(method, route string, status int, elapsed time.Duration) {
	m.inFlight.Add(ctx, 1)
	return func(method, route string, status int, elapsed time.Duration) {
		m.inFlight.Add(ctx, -1)
		attrs := metric.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}
