package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	defaultReplayPrefix = "storefront:idempotency:"
	inFlightMarker      = "pending"
	completedPrefix     = "done:"
)

// RedisOrderReplayStore implements IdempotencyStore on Redis so that every
// API instance shares the same view of client keys. A claim is a SETNX of an
// in-flight marker; completion overwrites it with the result reference.
type RedisOrderReplayStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisOrderReplayStore connects to Redis and verifies the connection
func NewRedisOrderReplayStore(ctx context.Context, cfg RedisConfig) (*RedisOrderReplayStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisOrderReplayStoreWithClient(client, ""), nil
}

// NewRedisOrderReplayStoreWithClient creates a store over an existing client
func NewRedisOrderReplayStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisOrderReplayStore {
	if keyPrefix == "" {
		keyPrefix = defaultReplayPrefix
	}
	return &RedisOrderReplayStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Claim claims key with SETNX. When the key exists its value tells whether
// the original request is still running or has finished.
func (s *RedisOrderReplayStore) Claim(ctx context.Context, key string, ttl time.Duration) (shared.ReplayState, string, error) {
	redisKey := s.keyPrefix + key

	// The second attempt covers a key that expires between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		claimed, err := s.client.SetNX(ctx, redisKey, inFlightMarker, ttl).Result()
		if err != nil {
			return shared.ReplayNew, "", fmt.Errorf("failed to claim idempotency key: %w", err)
		}
		if claimed {
			return shared.ReplayNew, "", nil
		}

		value, err := s.client.Get(ctx, redisKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return shared.ReplayNew, "", fmt.Errorf("failed to read idempotency key: %w", err)
		}

		if result, ok := strings.CutPrefix(value, completedPrefix); ok {
			return shared.ReplayCompleted, result, nil
		}
		return shared.ReplayInFlight, "", nil
	}
	return shared.ReplayNew, "", fmt.Errorf("idempotency key %q kept expiring while claimed", key)
}

// Complete records result for key
func (s *RedisOrderReplayStore) Complete(ctx context.Context, key, result string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, completedPrefix+result, ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Release deletes key
func (s *RedisOrderReplayStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisOrderReplayStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisOrderReplayStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisOrderReplayStore)(nil)
