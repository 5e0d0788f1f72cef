package logstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmehdipour/dialer/internal/model"
)

// FileStore keeps the whole history as one JSON document on disk, the way
// a small panel wants it: readable, greppable, no daemon. A mutex
// serializes concurrent requests; each write rewrites the document through
// a temp file and rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() ([]model.CallLogEntry, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read call log: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var entries []model.CallLogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse call log %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *FileStore) write(entries []model.CallLogEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode call log: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".calls-*.json")
	if err != nil {
		return fmt.Errorf("write call log: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write call log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write call log: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace call log: %w", err)
	}
	return nil
}

func (s *FileStore) Append(_ context.Context, e model.CallLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	return s.write(append(entries, e))
}

func (s *FileStore) All(_ context.Context) ([]model.CallLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Cleanup(_ context.Context, transform Transform) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return 0, err
	}
	for i := range entries {
		if entries[i].Error != "" {
			entries[i].Error = transform(entries[i].Error)
		}
	}
	if err := s.write(entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
