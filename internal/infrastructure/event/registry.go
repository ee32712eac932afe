package event

import (
	"sync"

	"github.com/storefront/backend/internal/domain/shared"
)

// HandlerRegistry maps event types to their handlers. Handlers registered
// without a type receive every event.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]shared.EventHandler)}
}

// Register adds handler for eventTypes. Registering the same handler for the
// same type twice has no effect.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.wildcard = appendUnique(r.wildcard, handler)
		return
	}
	for _, eventType := range eventTypes {
		r.handlers[eventType] = appendUnique(r.handlers[eventType], handler)
	}
}

// Unregister removes handler from every event type
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = removeHandler(r.wildcard, handler)
	for eventType, handlers := range r.handlers {
		remaining := removeHandler(handlers, handler)
		if len(remaining) == 0 {
			delete(r.handlers, eventType)
			continue
		}
		r.handlers[eventType] = remaining
	}
}

// GetHandlers returns the type-specific handlers followed by the wildcard
// handlers, in registration order
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.handlers[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(r.wildcard))
	result = append(result, typed...)
	return append(result, r.wildcard...)
}

// Len returns the number of distinct registered handlers
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]struct{})
	for _, h := range r.wildcard {
		seen[h] = struct{}{}
	}
	for _, handlers := range r.handlers {
		for _, h := range handlers {
			seen[h] = struct{}{}
		}
	}
	return len(seen)
}

func appendUnique(handlers []shared.EventHandler, handler shared.EventHandler) []shared.EventHandler {
	for _, h := range handlers {
		if h == handler {
			return handlers
		}
	}
	return append(handlers, handler)
}

func removeHandler(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	result := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			result = append(result, h)
		}
	}
	return result
}
