// Package event provides the in-process event bus that fans committed
// domain events out to their handlers.
package event

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// InMemoryEventBus dispatches events synchronously, in publish order. A
// failing or panicking handler is logged and does not stop the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

// Publish delivers each event to its handlers. The returned error joins the
// handler failures so callers may inspect them; the bus itself never stops
// early.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Int64("aggregate_id", event.AggregateID()),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers handler. Without explicit types the handler's own
// EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// HandlerCount returns the number of distinct subscribed handlers
func (b *InMemoryEventBus) HandlerCount() int {
	return b.registry.Len()
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "event", event.EventType(),
		"event.id", event.EventID().String(),
		"event.aggregate_id", event.AggregateID(),
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
		telemetry.RecordError(span, err)
		span.End()
	}()

	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
