package assessment

import (
	"context"
	"sort"
	"sync"
)

// Store is the append-only assessment history. ListByUser returns the
// newest entry first and an empty slice when the user has none.
type Store interface {
	Append(ctx context.Context, userID string, r Result) error
	ListByUser(ctx context.Context, userID string) ([]Result, error)
}

// MemoryStore keeps history in process. Values are copied on the way in
// and out so callers cannot mutate stored entries.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]Result)}
}

func (m *MemoryStore) Append(_ context.Context, userID string, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = append(m.entries[userID], r.clone())
	return nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userID string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.entries[userID]
	out := make([]Result, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i].clone())
	}
	// Newest timestamp first; ties keep the latest insert first.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
