package cache

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-backed store
func (f *IdempotencyStoreFactory) CreateRedisStore(ctx context.Context) (shared.IdempotencyStore, error) {
	store, err := NewRedisOrderReplayStore(ctx, RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore creates an in-memory store. Keys are not shared
// between instances, so a retry routed to another instance is not deduplicated.
func (f *IdempotencyStoreFactory) CreateInMemoryStore() shared.IdempotencyStore {
	return NewInMemoryIdempotencyStore()
}

// CreateStore returns the Redis store when Redis is enabled and reachable,
// otherwise the in-memory store if fallback is allowed.
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory idempotency store")
		return f.CreateInMemoryStore(), nil
	}

	store, err := f.CreateRedisStore(ctx)
	if err == nil {
		f.logger.Info("Using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"Retries routed to other instances will not be deduplicated.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
