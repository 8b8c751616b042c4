package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"catalogsearch/internal/models"
	"catalogsearch/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func stockedCatalog(n int) *models.CatalogSnapshot {
	products := make([]models.CachedProduct, 0, n)
	for i := 1; i <= n; i++ {
		p := models.CachedProduct{
			ID:           i,
			Name:         fmt.Sprintf("Producto %d", i),
			Slug:         fmt.Sprintf("producto-%d", i),
			Price:        "1000",
			RegularPrice: "1200",
			Image:        "/placeholder.png",
			InStock:      i%3 != 0,
			Categories:   []models.Category{},
		}
		p.RefreshSearchText()
		products = append(products, p)
	}
	return models.NewCatalogSnapshot(products, fixedNow)
}

func TestRecommendationService_InStockOnlyCappedAtLimit(t *testing.T) {
	source := new(MockSnapshotSource)
	source.On("Current", mock.Anything).Return(stockedCatalog(20), models.CacheFresh, nil)
	svc := services.NewRecommendationService(source, nil)

	products, err := svc.Recommended(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, products, services.DefaultRecommendedLimit)
	for _, p := range products {
		assert.NotZero(t, p.ID%3, "product %d is out of stock", p.ID)
	}
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, "1200", products[0].RegularPrice)
}

func TestRecommendationService_AbsentSnapshotIsEmpty(t *testing.T) {
	source := new(MockSnapshotSource)
	source.On("Current", mock.Anything).Return(nil, models.CacheAbsent, nil)
	svc := services.NewRecommendationService(source, nil)

	products, err := svc.Recommended(context.Background(), 4)

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestRecommendationService_SnapshotError(t *testing.T) {
	source := new(MockSnapshotSource)
	source.On("Current", mock.Anything).Return(nil, models.CacheState(""), errors.New("redis down"))
	svc := services.NewRecommendationService(source, nil)

	_, err := svc.Recommended(context.Background(), 4)

	assert.ErrorContains(t, err, "redis down")
}
