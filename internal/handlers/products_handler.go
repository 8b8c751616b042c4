package handlers

import (
	"context"

	"catalogsearch/internal/models"
	"catalogsearch/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Recommender lists products worth suggesting alongside a cart.
type Recommender interface {
	Recommended(ctx context.Context, limit int) ([]models.RecommendedProduct, error)
}

// ProductHandler serves product listings from the cached catalog.
type ProductHandler struct {
	recommender Recommender
	logger      *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(recommender Recommender, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{
		recommender: recommender,
		logger:      logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/recommended", h.HandleGetRecommended)
}

// HandleGetRecommended returns up to eight in-stock products.
func (h *ProductHandler) HandleGetRecommended(c *fiber.Ctx) error {
	products, err := h.recommender.Recommended(c.UserContext(), services.DefaultRecommendedLimit)
	if err != nil {
		h.logger.Error("Error fetching recommended products", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch recommended products",
		})
	}
	return c.JSON(fiber.Map{
		"products": products,
	})
}
