package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim is new, second is in flight", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		state, _, err := store.Claim(ctx, "order:anon:k1", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, shared.ReplayNew, state)

		state, _, err = store.Claim(ctx, "order:anon:k1", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, shared.ReplayInFlight, state)
	})

	t.Run("completed key returns its result", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, _, err := store.Claim(ctx, "k", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Complete(ctx, "k", "17", time.Hour))

		state, result, err := store.Claim(ctx, "k", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, shared.ReplayCompleted, state)
		assert.Equal(t, "17", result)
	})

	t.Run("released key can be claimed again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, _, err := store.Claim(ctx, "k", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "k"))

		state, _, err := store.Claim(ctx, "k", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, shared.ReplayNew, state)
	})

	t.Run("expired key can be claimed again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()
		now := time.Now()
		store.now = func() time.Time { return now }

		_, _, err := store.Claim(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.NoError(t, store.Complete(ctx, "k", "1", time.Minute))

		now = now.Add(2 * time.Minute)
		state, _, err := store.Claim(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, shared.ReplayNew, state)
	})

	t.Run("exactly one concurrent claimer wins", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				state, _, err := store.Claim(ctx, "race", time.Hour)
				if err == nil && state == shared.ReplayNew {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	_, _, _ = store.Claim(ctx, "short", time.Second)
	_, _, _ = store.Claim(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	now = now.Add(time.Minute)
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
