package storage

import (
	"context"
	"sync"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore holds the snapshot in memory. It backs tests and the
// "memory" data backend, where durability is not wanted.
type MemoryStore struct {
	mu   sync.Mutex
	snap core.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
