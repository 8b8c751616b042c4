package handlers

import (
	"context"
	"errors"
	"time"

	"catalogsearch/internal/models"
	"catalogsearch/internal/repositories"
	"catalogsearch/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// Syncer runs catalog rebuilds.
type Syncer interface {
	RebuildNow(ctx context.Context, trigger string) (*models.SyncRun, error)
	TriggerRebuild(trigger string) bool
}

// SyncHandler handles the catalog sync routes. All of them are expected to
// sit behind middleware.SecretRequired.
type SyncHandler struct {
	syncer Syncer
	runs   repositories.SyncRunRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewSyncHandler creates a new SyncHandler. runs may be nil, in which case
// the history route reports an empty list.
func NewSyncHandler(syncer Syncer, runs repositories.SyncRunRepository, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{
		syncer: syncer,
		runs:   runs,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterRoutes registers the sync routes with the Fiber app.
func (h *SyncHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/sync-products", h.HandleSyncProducts)
	router.Get("/cron/sync", h.HandleCronSync)
	router.Get("/sync/runs", h.HandleListRuns)
}

// HandleSyncProducts rebuilds the snapshot and waits for the result. A
// request arriving while a rebuild runs shares that rebuild's outcome.
func (h *SyncHandler) HandleSyncProducts(c *fiber.Ctx) error {
	run, err := h.syncer.RebuildNow(c.UserContext(), services.TriggerManual)
	if err != nil {
		h.logger.Error("Manual catalog sync failed", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, services.ErrSyncFailed) {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"totalProducts": run.TotalProducts,
		"lastSyncedAt":  run.FinishedAt,
		"durationMs":    run.DurationMs,
	})
}

// HandleCronSync starts a background rebuild and returns immediately.
func (h *SyncHandler) HandleCronSync(c *fiber.Ctx) error {
	triggered := h.syncer.TriggerRebuild(services.TriggerCron)

	message := "Product sync triggered"
	if !triggered {
		message = "Product sync already in progress"
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   message,
		"triggered": triggered,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HandleListRuns returns the most recent sync runs, newest first.
func (h *SyncHandler) HandleListRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultRunsLimit)
	if limit < 1 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	runs := []models.SyncRun{}
	if h.runs != nil {
		found, err := h.runs.ListRecent(limit)
		if err != nil {
			h.logger.Error("Error listing sync runs", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not retrieve sync runs",
				"error":   err.Error(),
			})
		}
		if found != nil {
			runs = found
		}
	}
	return c.JSON(fiber.Map{
		"runs":  runs,
		"count": len(runs),
	})
}
