package telemetry

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RejectReasonInternal labels rejections that are not placement errors.
// Placement errors are labelled with their own code.
const RejectReasonInternal = "internal"

// OrderMetrics records order placement outcomes
type OrderMetrics struct {
	placed   metric.Int64Counter
	rejected metric.Int64Counter
	amount   metric.Float64Counter
	items    metric.Int64Histogram
}

// NewOrderMetrics registers the order instruments on meter
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	placed, err := meter.Int64Counter("storefront_order_placed_total",
		metric.WithDescription("Orders successfully placed"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, fmt.Errorf("order placed counter: %w", err)
	}
	rejected, err := meter.Int64Counter("storefront_order_rejected_total",
		metric.WithDescription("Order placements rejected, by reason"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, fmt.Errorf("order rejected counter: %w", err)
	}
	amount, err := meter.Float64Counter("storefront_order_amount_total",
		metric.WithDescription("Sum of placed order totals"))
	if err != nil {
		return nil, fmt.Errorf("order amount counter: %w", err)
	}
	items, err := meter.Int64Histogram("storefront_order_items",
		metric.WithDescription("Units per placed order"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50, 100))
	if err != nil {
		return nil, fmt.Errorf("order items histogram: %w", err)
	}
	return &OrderMetrics{placed: placed, rejected: rejected, amount: amount, items: items}, nil
}

// RecordOrderPlaced counts a placed order with its total and unit count
func (m *OrderMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal, units int64, authenticated bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("authenticated", authenticated))
	m.placed.Add(ctx, 1, attrs)
	m.amount.Add(ctx, total.InexactFloat64(), attrs)
	m.items.Record(ctx, units)
}

// RecordOrderRejected counts a rejected placement
func (m *OrderMetrics) RecordOrderRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
