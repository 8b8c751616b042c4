package services

import (
	"context"
	"fmt"

	"catalogsearch/internal/models"

	"go.uber.org/zap"
)

// DefaultRecommendedLimit is the size of the recommended products list.
const DefaultRecommendedLimit = 8

// RecommendationService picks upsell products from the current snapshot
// instead of querying the catalog provider per request.
type RecommendationService struct {
	source SnapshotSource
	logger *zap.Logger
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(source SnapshotSource, logger *zap.Logger) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{source: source, logger: logger}
}

// Recommended returns up to limit in-stock products in snapshot order. While
// no snapshot exists the list is empty.
func (s *RecommendationService) Recommended(ctx context.Context, limit int) ([]models.RecommendedProduct, error) {
	if limit <= 0 {
		limit = DefaultRecommendedLimit
	}

	snapshot, _, err := s.source.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	products := []models.RecommendedProduct{}
	if snapshot == nil {
		return products, nil
	}
	for _, p := range snapshot.Products {
		if !p.InStock {
			continue
		}
		products = append(products, models.NewRecommendedProduct(p))
		if len(products) == limit {
			break
		}
	}
	return products, nil
}
