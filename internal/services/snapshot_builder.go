package services

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"catalogsearch/internal/metrics"
	"catalogsearch/internal/models"
	"catalogsearch/internal/repositories"
	"catalogsearch/internal/woocommerce"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPlaceholderImage is used for products without images.
const DefaultPlaceholderImage = "/placeholder.png"

// CatalogProvider is the external source of catalog products.
type CatalogProvider interface {
	AllProducts(ctx context.Context, params woocommerce.ListProductsParams) ([]woocommerce.Product, error)
}

// SyncPublisher announces finished rebuilds, e.g. over RabbitMQ.
type SyncPublisher interface {
	PublishCatalogSynced(event interface{}) error
}

// BuilderConfig carries the optional collaborators and settings of a SnapshotBuilder.
type BuilderConfig struct {
	Runs             repositories.SyncRunRepository // nil disables run history
	Publisher        SyncPublisher                  // nil disables events
	Metrics          *metrics.Metrics
	Logger           *zap.Logger
	PlaceholderImage string
	PageSize         int
	Now              func() time.Time
}

// SnapshotBuilder pulls the full catalog from the provider and stores it as
// a fresh snapshot.
type SnapshotBuilder struct {
	provider  CatalogProvider
	store     repositories.SnapshotRepository
	runs      repositories.SyncRunRepository
	publisher SyncPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	validate  *validator.Validate

	placeholderImage string
	pageSize         int
	now              func() time.Time
}

// NewSnapshotBuilder creates a new SnapshotBuilder.
func NewSnapshotBuilder(provider CatalogProvider, store repositories.SnapshotRepository, cfg BuilderConfig) *SnapshotBuilder {
	b := &SnapshotBuilder{
		provider:         provider,
		store:            store,
		runs:             cfg.Runs,
		publisher:        cfg.Publisher,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger,
		validate:         validator.New(),
		placeholderImage: cfg.PlaceholderImage,
		pageSize:         cfg.PageSize,
		now:              cfg.Now,
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.placeholderImage == "" {
		b.placeholderImage = DefaultPlaceholderImage
	}
	if b.pageSize <= 0 {
		b.pageSize = woocommerce.MaxPerPage
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Build fetches every published product and returns a new snapshot without
// storing it. Products failing validation are skipped; repeated ids keep
// their first occurrence.
func (b *SnapshotBuilder) Build(ctx context.Context) (*models.CatalogSnapshot, error) {
	raw, err := b.provider.AllProducts(ctx, woocommerce.ListProductsParams{
		PerPage: b.pageSize,
		Status:  "publish",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch products: %v", ErrSyncFailed, err)
	}

	products := make([]models.CachedProduct, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))
	skipped := 0
	for _, p := range raw {
		if err := b.validate.Struct(p); err != nil {
			skipped++
			b.logger.Warn("Skipping invalid catalog product", zap.Int("product_id", p.ID), zap.Error(err))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		products = append(products, NormalizeProduct(p, b.placeholderImage))
	}

	if skipped > 0 && len(products) == 0 {
		return nil, fmt.Errorf("%w: all %d products returned by the provider were invalid", ErrSyncFailed, skipped)
	}

	return models.NewCatalogSnapshot(products, b.now()), nil
}

// Rebuild builds a snapshot and replaces the stored one. On failure the
// stored snapshot is not touched and the error wraps ErrSyncFailed. Every
// attempt is recorded as a SyncRun.
func (b *SnapshotBuilder) Rebuild(ctx context.Context, trigger string) (*models.SyncRun, error) {
	started := b.now()
	run := &models.SyncRun{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		StartedAt: started.UTC(),
	}

	snapshot, err := b.Build(ctx)
	if err == nil {
		if writeErr := b.store.Write(ctx, snapshot); writeErr != nil {
			err = fmt.Errorf("%w: store snapshot: %v", ErrSyncFailed, writeErr)
		}
	}

	finished := b.now()
	run.FinishedAt = finished.UTC()
	run.DurationMs = finished.Sub(started).Milliseconds()

	if err != nil {
		run.Status = models.SyncStatusFailed
		run.Error = err.Error()
		b.metrics.ObserveSync(metrics.SyncFailed, finished.Sub(started))
		b.logger.Error("Catalog sync failed", zap.String("trigger", trigger), zap.Error(err))
	} else {
		run.Status = models.SyncStatusSucceeded
		run.TotalProducts = snapshot.TotalProducts
		b.metrics.ObserveSync(metrics.SyncSucceeded, finished.Sub(started))
		b.metrics.SetSnapshot(snapshot.TotalProducts, snapshot.LastSyncedAt)
		b.logger.Info("Catalog sync finished",
			zap.String("trigger", trigger),
			zap.Int("products", snapshot.TotalProducts),
			zap.Int64("duration_ms", run.DurationMs),
		)
	}

	b.record(run)
	return run, err
}

// record stores and announces a run. Failures here never fail the rebuild.
func (b *SnapshotBuilder) record(run *models.SyncRun) {
	if b.runs != nil {
		if err := b.runs.Create(run); err != nil {
			b.logger.Warn("Failed to record sync run", zap.Error(err))
		}
	}
	if b.publisher != nil && run.Status == models.SyncStatusSucceeded {
		if err := b.publisher.PublishCatalogSynced(run); err != nil {
			b.logger.Warn("Failed to publish catalog synced event", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// plainText drops HTML tags and entities and collapses whitespace.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(htmlTag.ReplaceAllString(s, " "))
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeProduct projects a provider product into a CachedProduct,
// filling documented defaults for missing optional fields.
func NormalizeProduct(p woocommerce.Product, placeholderImage string) models.CachedProduct {
	image := placeholderImage
	for _, img := range p.Images {
		if img.Src != "" {
			image = img.Src
			break
		}
	}

	categories := make([]models.Category, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, models.Category{ID: c.ID, Name: html.UnescapeString(c.Name), Slug: c.Slug})
	}

	var stock *int
	if p.StockQuantity != nil {
		q := *p.StockQuantity
		stock = &q
	}

	cp := models.CachedProduct{
		ID:               p.ID,
		Name:             html.UnescapeString(p.Name),
		Slug:             p.Slug,
		Price:            p.Price,
		RegularPrice:     p.RegularPrice,
		SalePrice:        p.SalePrice,
		Image:            image,
		Categories:       categories,
		ShortDescription: plainText(p.ShortDescription),
		Description:      plainText(p.Description),
		InStock:          p.StockStatus == "instock",
		StockQuantity:    stock,
	}
	cp.RefreshSearchText()
	return cp
}
