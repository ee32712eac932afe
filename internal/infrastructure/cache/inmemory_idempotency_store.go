package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// entry is a claimed key. An empty result means the claim is still in flight.
type entry struct {
	result    string
	done      bool
	expiresAt time.Time
}

// InMemoryIdempotencyStore implements IdempotencyStore using an in-memory map.
// It is suitable for single-instance deployments and tests.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store.
// It starts a background goroutine that drops expired keys.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Claim claims key unless a live claim exists
func (s *InMemoryIdempotencyStore) Claim(_ context.Context, key string, ttl time.Duration) (shared.ReplayState, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		if e.done {
			return shared.ReplayCompleted, e.result, nil
		}
		return shared.ReplayInFlight, "", nil
	}

	s.entries[key] = entry{expiresAt: now.Add(ttl)}
	return shared.ReplayNew, "", nil
}

// Complete stores result for key and restarts its TTL
func (s *InMemoryIdempotencyStore) Complete(_ context.Context, key, result string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{result: result, done: true, expiresAt: s.now().Add(ttl)}
	return nil
}

// Release forgets key
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of entries in the store
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
