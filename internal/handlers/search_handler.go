package handlers

import (
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// SearchHandler handles catalog searches.
type SearchHandler struct {
	search *services.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// RegisterRoutes registers the search route.
func (h *SearchHandler) RegisterRoutes(router fiber.Router, g Guards) {
	router.Get("/search", h.HandleSearch)
}

// HandleSearch answers GET /search?q=&category=&minPrice=&maxPrice=.
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	q := services.SearchQuery{
		Query:    c.Query("q"),
		Category: c.Query("category"),
	}
	var err error
	if q.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		return badRequest(c, "minPrice must be a number")
	}
	if q.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		return badRequest(c, "maxPrice must be a number")
	}

	result, err := h.search.Search(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func priceParam(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
