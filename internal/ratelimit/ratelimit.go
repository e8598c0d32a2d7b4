package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store is a transient presence marker with a TTL, keyed by caller/target.
// Acquire returns false while a live marker exists for the key. This is
// advisory backpressure: a lost marker lets an extra request through but
// never corrupts state.
type Store interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryStore is the in-process Store used when no Redis address is
// configured. Markers do not survive restarts, which the limiter tolerates.
type MemoryStore struct {
	mu        sync.Mutex
	deadlines map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		deadlines: make(map[string]time.Time),
	}
}

// Acquire sets a marker for key unless a live one exists.
func (s *MemoryStore) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if deadline, ok := s.deadlines[key]; ok && now.Before(deadline) {
		return false, nil
	}

	// Opportunistic sweep so abandoned keys don't accumulate.
	if len(s.deadlines) > 1024 {
		for k, d := range s.deadlines {
			if now.After(d) {
				delete(s.deadlines, k)
			}
		}
	}

	s.deadlines[key] = now.Add(ttl)
	return true, nil
}
