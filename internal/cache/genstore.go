package cache

import (
	"context"
	"sync"
)

// GenStore tracks a generation counter per tag. A cached entry records the
// generations it was built against; any later bump makes it stale. Entries
// never expire by time, matching the on-demand revalidation policy.
type GenStore interface {
	Bump(ctx context.Context, tags ...string) error
	Gens(ctx context.Context, tags ...string) ([]uint64, error)
}

type memoryGenStore struct {
	mu   sync.RWMutex
	gens map[string]uint64
}

// NewMemoryGenStore returns the in-process store used by single-replica
// deployments and tests.
func NewMemoryGenStore() GenStore {
	return &memoryGenStore{gens: make(map[string]uint64)}
}

func (s *memoryGenStore) Bump(_ context.Context, tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		s.gens[tag]++
	}
	return nil
}

func (s *memoryGenStore) Gens(_ context.Context, tags ...string) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint64, len(tags))
	for i, tag := range tags {
		out[i] = s.gens[tag]
	}
	return out, nil
}
