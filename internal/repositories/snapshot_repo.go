package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"catalogsearch/internal/models"
)

// ErrSnapshotCorrupt is returned when a stored snapshot cannot be parsed or
// fails its integrity check.
var ErrSnapshotCorrupt = errors.New("catalog snapshot is corrupt")

// SnapshotRepository holds exactly one catalog snapshot.
//
// Read reports an absent snapshot with ok == false and a nil error. Write
// replaces the stored snapshot atomically: concurrent readers see either the
// old or the new snapshot in full.
type SnapshotRepository interface {
	Read(ctx context.Context) (snapshot *models.CatalogSnapshot, ok bool, err error)
	Write(ctx context.Context, snapshot *models.CatalogSnapshot) error
}

func encodeSnapshot(snapshot *models.CatalogSnapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, errors.New("snapshot is nil")
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to write snapshot: %w", err)
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*models.CatalogSnapshot, error) {
	var snapshot models.CatalogSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if snapshot.Products == nil {
		snapshot.Products = []models.CachedProduct{}
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	return &snapshot, nil
}
