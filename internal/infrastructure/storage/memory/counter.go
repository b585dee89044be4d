package memory

import (
	"context"
	"sync"
)

// CounterStore is an in-memory sequence backend. Increment is atomic per
// scope key, matching the UPSERT semantics of the SQL backend.
type CounterStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewCounterStore creates an empty counter store.
func NewCounterStore() *CounterStore {
	return &CounterStore{counters: make(map[string]int64)}
}

// Increment advances the counter for scopeKey and returns the new value.
func (s *CounterStore) Increment(ctx context.Context, scopeKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[scopeKey]++
	return s.counters[scopeKey], nil
}

// Peek returns the last allocated value without advancing. Test helper.
func (s *CounterStore) Peek(scopeKey string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[scopeKey]
}
