package trade

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// OrderPlacedRecorder receives successful placements
type OrderPlacedRecorder interface {
	RecordOrderPlaced(ctx context.Context, total decimal.Decimal, units int64, authenticated bool)
}

// OrderMetricsHandler counts placed orders from OrderPlaced events
type OrderMetricsHandler struct {
	recorder OrderPlacedRecorder
}

// NewOrderMetricsHandler creates an OrderMetricsHandler
func NewOrderMetricsHandler(recorder OrderPlacedRecorder) *OrderMetricsHandler {
	return &OrderMetricsHandler{recorder: recorder}
}

// EventTypes implements shared.EventHandler
func (h *OrderMetricsHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPlaced}
}

// Handle implements shared.EventHandler
func (h *OrderMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*trade.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	var units int64
	for _, line := range placed.Lines {
		units += int64(line.Quantity)
	}
	h.recorder.RecordOrderPlaced(ctx, placed.TotalPrice, units, placed.UserID != nil)
	return nil
}

// OrderAuditHandler writes one structured audit line per placed order
type OrderAuditHandler struct {
	logger *zap.Logger
}

// NewOrderAuditHandler creates an OrderAuditHandler
func NewOrderAuditHandler(logger *zap.Logger) *OrderAuditHandler {
	return &OrderAuditHandler{logger: logger.Named("audit")}
}

// EventTypes implements shared.EventHandler
func (h *OrderAuditHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPlaced}
}

// Handle implements shared.EventHandler
func (h *OrderAuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*trade.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	fields := []zap.Field{
		zap.String("event_id", placed.EventID().String()),
		zap.Int64("order_id", placed.OrderID),
		zap.String("total_price", placed.TotalPrice.StringFixed(2)),
		zap.Int("lines", len(placed.Lines)),
		zap.Time("occurred_at", placed.OccurredAt()),
	}
	if placed.UserID != nil {
		fields = append(fields, zap.Int64("user_id", *placed.UserID))
	}
	h.logger.Info("Order placed", fields...)
	return nil
}
