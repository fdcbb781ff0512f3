package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// SearchCriteria qualifies a catalog search. The text query is matched
// against product and category name/description; the remaining fields are
// conjunctive filters and are ignored when empty.
type SearchCriteria struct {
	Query        string
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
}

// ProductFilter narrows the admin product listing.
type ProductFilter struct {
	Status models.ProductStatus
	Query  string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	ListActive(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	UpdateStatus(ctx context.Context, id string, status models.ProductStatus) error
	AddReview(ctx context.Context, review *models.Review) error
	Count(ctx context.Context) (int64, error)
	// DecrementStock subtracts quantity from an active product only when at
	// least quantity units are available. It reports whether a row changed.
	DecrementStock(ctx context.Context, id string, quantity int) (bool, error)
	IncrementStock(ctx context.Context, id string, quantity int) error
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	// Summaries counts active products per category. With activeOnly set,
	// categories without active products are left out.
	Summaries(ctx context.Context, activeOnly bool) ([]models.CategorySummary, error)
	Count(ctx context.Context) (int64, error)
}
