package repositories

import (
	"errors"
	"fmt"

	"catalogsearch/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSyncRunRepository is a GORM implementation of SyncRunRepository.
type GORMSyncRunRepository struct {
	db *gorm.DB
}

// NewGORMSyncRunRepository creates a new instance of GORMSyncRunRepository.
func NewGORMSyncRunRepository(db *gorm.DB) *GORMSyncRunRepository {
	return &GORMSyncRunRepository{
		db: db,
	}
}

// Create stores a sync run, assigning an ID when none is set.
func (r *GORMSyncRunRepository) Create(run *models.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *GORMSyncRunRepository) ListRecent(limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	if err := r.db.Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}

// LastSuccessful returns the most recent successful run, or nil if there is none.
func (r *GORMSyncRunRepository) LastSuccessful() (*models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.Where("status = ?", models.SyncStatusSucceeded).Order("started_at desc").First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last successful sync run: %w", err)
	}
	return &run, nil
}
