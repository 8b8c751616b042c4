package repositories

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"catalogsearch/internal/models"

	"github.com/spf13/afero"
)

// FileSnapshotRepository stores the snapshot as one JSON file.
// Writes go to a temporary file in the same directory which is then renamed
// over the target, so readers never observe a partial file.
type FileSnapshotRepository struct {
	fs   afero.Fs
	path string
}

// NewFileSnapshotRepository creates a repository writing to path on fs.
// Pass afero.NewOsFs() for the real filesystem.
func NewFileSnapshotRepository(fs afero.Fs, path string) *FileSnapshotRepository {
	return &FileSnapshotRepository{
		fs:   fs,
		path: path,
	}
}

// Path returns the snapshot file location.
func (r *FileSnapshotRepository) Path() string {
	return r.path
}

// Read loads the snapshot file. A missing file means no snapshot yet.
func (r *FileSnapshotRepository) Read(_ context.Context) (*models.CatalogSnapshot, bool, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot file %s: %w", r.path, err)
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		return nil, false, fmt.Errorf("snapshot file %s: %w", r.path, err)
	}
	return snapshot, true, nil
}

// Write replaces the snapshot file atomically.
func (r *FileSnapshotRepository) Write(_ context.Context, snapshot *models.CatalogSnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(r.fs, dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to write temporary snapshot file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to sync temporary snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temporary snapshot file: %w", err)
	}

	if err := r.fs.Rename(tmpName, r.path); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot file %s: %w", r.path, err)
	}
	return nil
}
