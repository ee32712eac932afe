package testutil

import (
	"context"
	"sync"

	"github.com/storefront/backend/internal/domain/shared"
)

// RecordingEventHandler records the events it receives.
type RecordingEventHandler struct {
	eventTypes []string

	mu      sync.Mutex
	handled []shared.DomainEvent
	err     error
	panics  bool
}

// NewRecordingEventHandler subscribes to eventTypes, or to every event when
// none are given.
func NewRecordingEventHandler(eventTypes ...string) *RecordingEventHandler {
	return &RecordingEventHandler{eventTypes: eventTypes}
}

func (h *RecordingEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event, then panics or returns the configured error.
func (h *RecordingEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	err, panics := h.err, h.panics
	h.mu.Unlock()

	if panics {
		panic("event handler failure")
	}
	return err
}

// Handled returns a copy of the recorded events.
func (h *RecordingEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]shared.DomainEvent, len(h.handled))
	copy(result, h.handled)
	return result
}

func (h *RecordingEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// FailWith makes Handle return err.
func (h *RecordingEventHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// PanicOnHandle makes Handle panic after recording.
func (h *RecordingEventHandler) PanicOnHandle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = true
}

// OrderEvent is a bare domain event on the Order aggregate.
type OrderEvent struct {
	shared.BaseDomainEvent
}

func NewOrderEvent(eventType string, orderID int64) *OrderEvent {
	return &OrderEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", orderID)}
}
