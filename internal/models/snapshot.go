package models

import (
	"fmt"
	"time"
)

// CacheState describes the snapshot handed to a search request.
type CacheState string

const (
	CacheAbsent CacheState = "absent"
	CacheStale  CacheState = "stale"
	CacheFresh  CacheState = "fresh"
)

// CatalogSnapshot is the unit of persistence: a complete, point-in-time copy
// of the searchable catalog. It is replaced wholesale, never patched.
type CatalogSnapshot struct {
	Products      []CachedProduct `json:"products"`
	LastSyncedAt  time.Time       `json:"lastSync"`
	TotalProducts int             `json:"totalProducts"`
}

// NewCatalogSnapshot stamps products with the sync time and count.
func NewCatalogSnapshot(products []CachedProduct, syncedAt time.Time) *CatalogSnapshot {
	if products == nil {
		products = []CachedProduct{}
	}
	return &CatalogSnapshot{
		Products:      products,
		LastSyncedAt:  syncedAt.UTC(),
		TotalProducts: len(products),
	}
}

// Age returns how long ago the snapshot was built.
func (s *CatalogSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.LastSyncedAt)
}

// IsStale reports whether the snapshot is older than threshold.
func (s *CatalogSnapshot) IsStale(now time.Time, threshold time.Duration) bool {
	return s.Age(now) > threshold
}

// Validate checks the integrity rules of a snapshot: the recorded count must
// match the product list and product ids must be unique.
func (s *CatalogSnapshot) Validate() error {
	if s.TotalProducts != len(s.Products) {
		return fmt.Errorf("totalProducts is %d but snapshot holds %d products", s.TotalProducts, len(s.Products))
	}
	seen := make(map[int]struct{}, len(s.Products))
	for _, p := range s.Products {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %d", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
