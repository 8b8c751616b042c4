package handlers

import (
	"context"

	"catalogsearch/internal/woocommerce"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CategoryProvider lists the catalog's categories.
type CategoryProvider interface {
	AllCategories(ctx context.Context) ([]woocommerce.Category, error)
}

// CategoryHandler proxies the provider's category list.
type CategoryHandler struct {
	provider CategoryProvider
	logger   *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(provider CategoryProvider, logger *zap.Logger) *CategoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryHandler{
		provider: provider,
		logger:   logger,
	}
}

// RegisterRoutes registers the category route with the Fiber app.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleGetCategories)
}

// HandleGetCategories returns every provider category.
func (h *CategoryHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.provider.AllCategories(c.UserContext())
	if err != nil {
		h.logger.Error("Error fetching categories", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch categories",
		})
	}
	if categories == nil {
		categories = []woocommerce.Category{}
	}
	return c.JSON(categories)
}
