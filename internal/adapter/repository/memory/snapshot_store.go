package memory

import (
	"context"
	"sync"
)

// SnapshotStore keeps the snapshot document in process memory
type SnapshotStore struct {
	mu    sync.RWMutex
	data  []byte
	found bool
	saves int
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// NewSnapshotStoreWith creates a store already holding the given document
func NewSnapshotStoreWith(data []byte) *SnapshotStore {
	return &SnapshotStore{data: append([]byte(nil), data...), found: true}
}

// Load returns a copy of the stored document
func (s *SnapshotStore) Load(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.found {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

// Save replaces the stored document with a copy of data
func (s *SnapshotStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.found = true
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded
func (s *SnapshotStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
