package repositories

import (
	"context"
	"sync"

	"catalogsearch/internal/models"
)

// MemorySnapshotRepository is an in-memory implementation of SnapshotRepository.
// It does not survive restarts; it backs tests and runs without a cache backend.
type MemorySnapshotRepository struct {
	data []byte
	mu   sync.RWMutex
}

// NewMemorySnapshotRepository creates an empty MemorySnapshotRepository.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{}
}

// Read returns a private copy of the stored snapshot.
func (r *MemorySnapshotRepository) Read(_ context.Context) (*models.CatalogSnapshot, bool, error) {
	r.mu.RLock()
	data := r.data
	r.mu.RUnlock()

	if data == nil {
		return nil, false, nil
	}
	snapshot, err := decodeSnapshot(data)
	if err != nil {
		return nil, false, err
	}
	return snapshot, true, nil
}

// Write stores an encoded copy of the snapshot, so callers can keep mutating theirs.
func (r *MemorySnapshotRepository) Write(_ context.Context, snapshot *models.CatalogSnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = data
	return nil
}
