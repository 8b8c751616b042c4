package repositories

import (
	"catalogsearch/internal/models"
)

// SyncRunRepository defines the interface for snapshot build history.
type SyncRunRepository interface {
	Create(run *models.SyncRun) error
	ListRecent(limit int) ([]models.SyncRun, error)
	LastSuccessful() (*models.SyncRun, error)
}
