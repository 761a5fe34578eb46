package seen

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps entries in memory. It is meant for tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryStore(entries ...Entry) *MemoryStore {
	return &MemoryStore{entries: append([]Entry(nil), entries...)}
}

func (s *MemoryStore) Load(context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...), nil
}

func (s *MemoryStore) IsMarked(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Contains(s.entries, id), nil
}

func (s *MemoryStore) Mark(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = Add(s.entries, NewEntry(id, now))
	return nil
}

func (s *MemoryStore) Prune(_ context.Context, now time.Time, retention time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := Survivors(s.entries, now, retention)
	removed := len(s.entries) - len(kept)
	s.entries = kept
	return removed, nil
}
