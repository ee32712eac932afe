package shared

import (
	"context"
	"time"
)

// ReplayState describes what an idempotency store knows about a request key
type ReplayState int

const (
	// ReplayNew means the key was unknown and has now been claimed by the caller
	ReplayNew ReplayState = iota
	// ReplayInFlight means another request holds the key and has not finished
	ReplayInFlight
	// ReplayCompleted means the key finished and a result reference is stored
	ReplayCompleted
)

// IdempotencyStore deduplicates client retries of a write request.
// A key is claimed before the write, completed with a result reference after
// commit, or released when the write fails so the client may resubmit.
type IdempotencyStore interface {
	// Claim atomically claims key. When the key is already known it reports its
	// state and, for completed keys, the stored result reference.
	Claim(ctx context.Context, key string, ttl time.Duration) (ReplayState, string, error)

	// Complete stores the result reference for a claimed key
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Release forgets a claimed key
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed key is remembered
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
