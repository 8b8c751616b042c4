package handlers

import (
	"context"

	"catalogsearch/internal/models"
	"catalogsearch/internal/search"

	"github.com/gofiber/fiber/v2"
)

// Searcher answers search queries.
type Searcher interface {
	Search(ctx context.Context, q string, perPage int) models.SearchResponse
}

// SearchHandler handles HTTP requests for product search.
type SearchHandler struct {
	service Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service Searcher) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// RegisterRoutes registers the search route with the Fiber app.
func (h *SearchHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/search", h.HandleSearch)
}

// HandleSearch runs a fuzzy search. It always answers 200; failures are
// reported in the body's "error" field.
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	q := c.Query("q")
	perPage := search.ClampPerPage(c.Query("per_page"))

	resp := h.service.Search(c.UserContext(), q, perPage)
	return c.Status(fiber.StatusOK).JSON(resp)
}
