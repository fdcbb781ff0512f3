package repositories

import (
	"context"

	"storefront/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// Get returns the cart with its lines in insertion order, or nil when
	// the cart was never created.
	Get(ctx context.Context, key string) (*models.Cart, error)
	// Ensure creates the cart row for key if it does not exist yet.
	Ensure(ctx context.Context, key string, userID *string) error
	// Lines returns the lines of a cart in insertion order. A missing cart
	// has no lines.
	Lines(ctx context.Context, key string) ([]models.CartLine, error)
	// LineByProduct returns the line holding productID, or nil.
	LineByProduct(ctx context.Context, key, productID string) (*models.CartLine, error)
	CreateLine(ctx context.Context, line *models.CartLine) error
	UpdateLineQuantity(ctx context.Context, lineID string, quantity int) error
	// DeleteLine reports whether a line was removed.
	DeleteLine(ctx context.Context, key, lineID string) (bool, error)
	Clear(ctx context.Context, key string) error
}
