package logstore

import (
	"context"
	"sync"

	"github.com/jmehdipour/dialer/internal/model"
)

// MemoryStore is the in-process backend, used by tests and by ephemeral
// deployments that do not care about history across restarts.
type MemoryStore struct {
	mu      sync.Mutex
	entries []model.CallLogEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e model.CallLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *MemoryStore) All(_ context.Context) ([]model.CallLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CallLogEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Cleanup(_ context.Context, transform Transform) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].Error != "" {
			s.entries[i].Error = transform(s.entries[i].Error)
		}
	}
	return len(s.entries), nil
}
