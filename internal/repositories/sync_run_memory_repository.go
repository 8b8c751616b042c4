package repositories

import (
	"sort"
	"sync"

	"catalogsearch/internal/models"

	"github.com/google/uuid"
)

// MemorySyncRunRepository is an in-memory implementation of SyncRunRepository.
type MemorySyncRunRepository struct {
	runs []models.SyncRun
	mu   sync.RWMutex
}

// NewMemorySyncRunRepository creates a new instance of MemorySyncRunRepository.
func NewMemorySyncRunRepository() *MemorySyncRunRepository {
	return &MemorySyncRunRepository{}
}

// Create appends a run.
func (r *MemorySyncRunRepository) Create(run *models.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	r.runs = append(r.runs, *run)
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *MemorySyncRunRepository) ListRecent(limit int) ([]models.SyncRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Reverse insertion order so runs with equal start times stay newest first.
	runs := make([]models.SyncRun, 0, len(r.runs))
	for i := len(r.runs) - 1; i >= 0; i-- {
		runs = append(runs, r.runs[i])
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// LastSuccessful returns the most recent successful run, or nil.
func (r *MemorySyncRunRepository) LastSuccessful() (*models.SyncRun, error) {
	runs, _ := r.ListRecent(0)
	for i := range runs {
		if runs[i].Status == models.SyncStatusSucceeded {
			return &runs[i], nil
		}
	}
	return nil, nil
}
