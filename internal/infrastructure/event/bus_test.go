package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/tests/testutil"
)

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to matching and wildcard handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		placed := testutil.NewRecordingEventHandler("OrderPlaced")
		other := testutil.NewRecordingEventHandler("ProductUpdated")
		all := testutil.NewRecordingEventHandler()
		bus.Subscribe(placed)
		bus.Subscribe(other)
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(ctx, testutil.NewOrderEvent("OrderPlaced", 1), testutil.NewOrderEvent("OrderPlaced", 2)))

		assert.Equal(t, 2, placed.HandledCount())
		assert.Equal(t, 0, other.HandledCount())
		assert.Equal(t, 2, all.HandledCount())
		assert.Equal(t, int64(1), placed.Handled()[0].AggregateID())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := testutil.NewRecordingEventHandler("OrderPlaced")
		bus.Subscribe(h, "Other")

		require.NoError(t, bus.Publish(ctx, testutil.NewOrderEvent("OrderPlaced", 1)))
		assert.Equal(t, 0, h.HandledCount())
	})

	t.Run("failing handler does not stop the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := testutil.NewRecordingEventHandler("OrderPlaced")
		failing.FailWith(errors.New("handler down"))
		after := testutil.NewRecordingEventHandler("OrderPlaced")
		bus.Subscribe(failing)
		bus.Subscribe(after)

		err := bus.Publish(ctx, testutil.NewOrderEvent("OrderPlaced", 1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "handler down")
		assert.Equal(t, 1, after.HandledCount())
	})

	t.Run("panicking handler is recovered", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		bad := testutil.NewRecordingEventHandler("OrderPlaced")
		bad.PanicOnHandle()
		good := testutil.NewRecordingEventHandler("OrderPlaced")
		bus.Subscribe(bad)
		bus.Subscribe(good)

		var err error
		require.NotPanics(t, func() { err = bus.Publish(ctx, testutil.NewOrderEvent("OrderPlaced", 1)) })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
		assert.Equal(t, 1, good.HandledCount())
	})
}

func TestInMemoryEventBus_Subscriptions(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := testutil.NewRecordingEventHandler("OrderPlaced", "OrderCancelled")

	bus.Subscribe(h)
	bus.Subscribe(h)
	assert.Equal(t, 1, bus.HandlerCount())
	assert.Len(t, bus.registry.GetHandlers("OrderPlaced"), 1)

	bus.Unsubscribe(h)
	assert.Equal(t, 0, bus.HandlerCount())
	assert.Empty(t, bus.registry.GetHandlers("OrderCancelled"))

	require.NoError(t, bus.Publish(context.Background(), testutil.NewOrderEvent("OrderPlaced", 1)))
	assert.Equal(t, 0, h.HandledCount())
}

func TestHandlerRegistry_Order(t *testing.T) {
	r := NewHandlerRegistry()
	wild := testutil.NewRecordingEventHandler()
	first := testutil.NewRecordingEventHandler("X")
	second := testutil.NewRecordingEventHandler("X")

	r.Register(wild)
	r.Register(first, "X")
	r.Register(second, "X")

	got := r.GetHandlers("X")
	require.Len(t, got, 3)
	assert.Same(t, first, got[0])
	assert.Same(t, second, got[1])
	assert.Same(t, wild, got[2])
	assert.Equal(t, []shared.EventHandler{wild}, r.GetHandlers("Y"))
}
