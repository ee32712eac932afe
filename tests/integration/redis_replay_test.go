package integration

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return config.RedisConfig{Enabled: true, Host: host, Port: portNum}
}

func TestRedisReplayStore_Integration(t *testing.T) {
	ctx := context.Background()
	cfg := startRedis(t)

	store, err := cache.NewIdempotencyStoreFactory(cfg,
		cache.WithLogger(zap.NewNop()),
		cache.WithInMemoryFallback(false),
	).CreateStore(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	t.Run("claim complete replay", func(t *testing.T) {
		state, _, err := store.Claim(ctx, "order:anon:a", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, shared.ReplayNew, state)

		state, _, err = store.Claim(ctx, "order:anon:a", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, shared.ReplayInFlight, state)

		require.NoError(t, store.Complete(ctx, "order:anon:a", "42", time.Minute))

		state, ref, err := store.Claim(ctx, "order:anon:a", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, shared.ReplayCompleted, state)
		assert.Equal(t, "42", ref)
	})

	t.Run("release lets the key be claimed again", func(t *testing.T) {
		_, _, err := store.Claim(ctx, "order:user:7:b", time.Minute)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "order:user:7:b"))

		state, _, err := store.Claim(ctx, "order:user:7:b", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, shared.ReplayNew, state)
	})

	t.Run("keys expire", func(t *testing.T) {
		_, _, err := store.Claim(ctx, "order:anon:c", time.Second)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			state, _, err := store.Claim(ctx, "order:anon:c", time.Minute)
			return err == nil && state == shared.ReplayNew
		}, 5*time.Second, 200*time.Millisecond)
	})
}

func TestRedisReplayStore_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	_, err := cache.NewIdempotencyStoreFactory(cfg, cache.WithInMemoryFallback(false)).CreateStore(context.Background())
	assert.Error(t, err)
}
