package repositories

import (
	"context"
	"errors"
	"fmt"

	"catalogsearch/internal/models"

	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotKey is the redis key holding the snapshot.
const DefaultSnapshotKey = "catalog:snapshot"

// RedisSnapshotRepository stores the snapshot under a single redis key.
// SET replaces the value atomically, so no extra coordination is needed.
type RedisSnapshotRepository struct {
	client *redis.Client
	key    string
}

// NewRedisSnapshotRepository creates a redis-backed repository.
func NewRedisSnapshotRepository(client *redis.Client, key string) *RedisSnapshotRepository {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &RedisSnapshotRepository{
		client: client,
		key:    key,
	}
}

// Read fetches the snapshot. A missing key means no snapshot yet.
func (r *RedisSnapshotRepository) Read(ctx context.Context) (*models.CatalogSnapshot, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get snapshot: %w", err)
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		return nil, false, err
	}
	return snapshot, true, nil
}

// Write replaces the stored snapshot. The key never expires; staleness is
// judged from lastSync.
func (r *RedisSnapshotRepository) Write(ctx context.Context, snapshot *models.CatalogSnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}
