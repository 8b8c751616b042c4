package handlers

import (
	"context"
	"time"

	"catalogsearch/internal/models"
	"catalogsearch/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CacheInspector reports the snapshot state without side effects.
type CacheInspector interface {
	Peek(ctx context.Context) (*models.CatalogSnapshot, models.CacheState, error)
	Rebuilding() bool
	StaleAfter() time.Duration
}

// HealthHandler reports process and cache health. It never starts a rebuild,
// so frequent polling cannot load the catalog provider.
type HealthHandler struct {
	cache  CacheInspector
	runs   repositories.SyncRunRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewHealthHandler creates a new HealthHandler. runs may be nil.
func NewHealthHandler(cache CacheInspector, runs repositories.SyncRunRepository, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{cache: cache, runs: runs, logger: logger, now: time.Now}
}

// RegisterRoutes registers the health route with the Fiber app.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 while the process is up, even if the cache is
// empty or unreadable; the cache details are informational.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":     "healthy",
		"time":       h.now().UTC().Format(time.RFC3339),
		"rebuilding": h.cache.Rebuilding(),
		"staleAfter": h.cache.StaleAfter().String(),
	}

	snapshot, state, err := h.cache.Peek(c.UserContext())
	switch {
	case err != nil:
		body["cache"] = "unreadable"
		body["error"] = err.Error()
	case snapshot == nil:
		body["cache"] = state
	default:
		body["cache"] = state
		body["lastSyncedAt"] = snapshot.LastSyncedAt
		body["totalProducts"] = snapshot.TotalProducts
	}

	if h.runs != nil {
		last, err := h.runs.LastSuccessful()
		if err != nil {
			h.logger.Warn("Error reading last successful sync", zap.Error(err))
		} else if last != nil {
			body["lastSuccessfulSync"] = last.FinishedAt
		}
	}
	return c.Status(fiber.StatusOK).JSON(body)
}
