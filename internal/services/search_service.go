package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalogsearch/internal/metrics"
	"catalogsearch/internal/models"
	"catalogsearch/internal/search"

	"go.uber.org/zap"
)

// WarmingMessage is returned while the first snapshot is being built.
const WarmingMessage = "Initializing product cache. Please try again in a few moments."

// SnapshotSource yields the snapshot a search runs against.
type SnapshotSource interface {
	Current(ctx context.Context) (*models.CatalogSnapshot, models.CacheState, error)
}

// Ranker scores products against a query. *search.Engine implements it.
type Ranker interface {
	Search(products []models.CachedProduct, q string, perPage int) search.Result
}

// SearchService answers search requests. It never fails: problems are
// reported in the response's Error field.
type SearchService struct {
	source  SnapshotSource
	ranker  Ranker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSearchService creates a new SearchService.
func NewSearchService(source SnapshotSource, ranker Ranker, m *metrics.Metrics, logger *zap.Logger) *SearchService {
	if ranker == nil {
		ranker = search.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		source:  source,
		ranker:  ranker,
		metrics: m,
		logger:  logger,
	}
}

// Search ranks the current snapshot against q and returns at most perPage
// products. An empty query returns empty results without reading the snapshot.
func (s *SearchService) Search(ctx context.Context, q string, perPage int) (resp models.SearchResponse) {
	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() {
		s.metrics.ObserveSearch(outcome, time.Since(start))
	}()

	q = strings.TrimSpace(q)
	if q == "" {
		outcome = metrics.OutcomeEmpty
		return models.EmptySearchResponse()
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = metrics.OutcomeError
			s.logger.Error("Search panicked", zap.String("query", q), zap.Any("panic", r))
			resp = errorResponse(fmt.Errorf("search failed: %v", r))
		}
	}()

	snapshot, state, err := s.source.Current(ctx)
	if err != nil {
		outcome = metrics.OutcomeError
		s.logger.Error("Search could not load catalog snapshot", zap.String("query", q), zap.Error(err))
		return errorResponse(err)
	}
	if state == models.CacheAbsent || snapshot == nil {
		outcome = metrics.OutcomeWarming
		resp = models.EmptySearchResponse()
		resp.Message = WarmingMessage
		return resp
	}

	result := s.ranker.Search(snapshot.Products, q, perPage)
	return models.SearchResponse{
		Products:     result.Hits(),
		Categories:   result.Categories,
		Pages:        result.Pages,
		TotalResults: len(result.Matches),
		CacheInfo: &models.CacheInfo{
			LastSyncedAt:  snapshot.LastSyncedAt,
			TotalProducts: snapshot.TotalProducts,
		},
	}
}

func errorResponse(err error) models.SearchResponse {
	resp := models.EmptySearchResponse()
	resp.Error = err.Error()
	return resp
}
