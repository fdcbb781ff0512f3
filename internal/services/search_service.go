package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

// MinQueryLength is the shortest text query that reaches the catalog.
const MinQueryLength = 2

// SearchQuery qualifies a catalog search.
type SearchQuery struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// SearchResult is a page of matching products plus the categories that
// can still be used to filter.
type SearchResult struct {
	Products   []models.ProductView     `json:"products"`
	Total      int                      `json:"total"`
	Categories []models.CategorySummary `json:"categories,omitempty"`
	Query      string                   `json:"query,omitempty"`
	Message    string                   `json:"message,omitempty"`
}

// SearchService answers storefront searches.
type SearchService struct {
	store repositories.Store
}

func NewSearchService(store repositories.Store) *SearchService {
	return &SearchService{store: store}
}

// Search matches the query against product and category text. Queries
// shorter than MinQueryLength return an empty result without querying
// the store.
func (s *SearchService) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if utf8.RuneCountInString(strings.TrimSpace(q.Query)) < MinQueryLength {
		return &SearchResult{
			Products: []models.ProductView{},
			Total:    0,
			Message:  "Search query must be at least 2 characters long",
		}, nil
	}

	criteria := repositories.SearchCriteria{
		Query:    strings.TrimSpace(q.Query),
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
	}
	if q.Category != "" && q.Category != "all" {
		criteria.CategorySlug = q.Category
	}

	products, err := s.store.Products().Search(ctx, criteria)
	if err != nil {
		return nil, apperr.Unexpected(err, "search failed")
	}
	categories, err := s.store.Categories().Summaries(ctx, true)
	if err != nil {
		return nil, apperr.Unexpected(err, "search failed")
	}

	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, models.NewProductView(p))
	}
	return &SearchResult{
		Products:   views,
		Total:      len(views),
		Categories: categories,
		Query:      q.Query,
	}, nil
}
