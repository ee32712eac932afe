package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestOrderMetrics(t *testing.T) {
	mp, reader := newTestMeter(t)
	m, err := NewOrderMetrics(mp.Meter(MeterName))
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordOrderPlaced(ctx, decimal.RequireFromString("19.90"), 2, false)
	m.RecordOrderPlaced(ctx, decimal.RequireFromString("10.10"), 1, true)
	m.RecordOrderRejected(ctx, "INSUFFICIENT_STOCK")
	m.RecordOrderRejected(ctx, "INSUFFICIENT_STOCK")
	m.RecordOrderRejected(ctx, "PRODUCT_NOT_FOUND")

	got := collect(t, reader)

	t.Run("placed counter split by authentication", func(t *testing.T) {
		sum := got["storefront_order_placed_total"].Data.(metricdata.Sum[int64])
		require.Len(t, sum.DataPoints, 2)
		for _, dp := range sum.DataPoints {
			assert.Equal(t, int64(1), dp.Value)
		}
	})

	t.Run("amount accumulates totals", func(t *testing.T) {
		sum := got["storefront_order_amount_total"].Data.(metricdata.Sum[float64])
		var total float64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		assert.InDelta(t, 30.0, total, 0.0001)
	})

	t.Run("rejections by reason", func(t *testing.T) {
		sum := got["storefront_order_rejected_total"].Data.(metricdata.Sum[int64])
		byReason := map[string]int64{}
		for _, dp := range sum.DataPoints {
			reason, _ := dp.Attributes.Value(attribute.Key("reason"))
			byReason[reason.AsString()] = dp.Value
		}
		assert.Equal(t, map[string]int64{"INSUFFICIENT_STOCK": 2, "PRODUCT_NOT_FOUND": 1}, byReason)
	})

	t.Run("nil receiver is a no-op", func(t *testing.T) {
		var none *OrderMetrics
		assert.NotPanics(t, func() {
			none.RecordOrderRejected(ctx, RejectReasonInternal)
			none.RecordOrderPlaced(ctx, decimal.Zero, 0, false)
		})
	})
}

func TestHTTPMetrics(t *testing.T) {
	mp, reader := newTestMeter(t)
	m, err := NewHTTPMetrics(mp.Meter(MeterName))
	require.NoError(t, err)

	done := m.Begin(context.Background())
	done("GET", "/api/products/", 200, 15*time.Millisecond)

	got := collect(t, reader)
	requests := got["http_server_requests_total"].Data.(metricdata.Sum[int64])
	require.Len(t, requests.DataPoints, 1)
	route, _ := requests.DataPoints[0].Attributes.Value("http.route")
	assert.Equal(t, "/api/products/", route.AsString())

	active := got["http_server_active_requests"].Data.(metricdata.Sum[int64])
	assert.Equal(t, int64(0), active.DataPoints[0].Value)
}

func TestMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter())
	assert.NoError(t, mp.Shutdown(context.Background()))
}
