package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create inserts the order together with its items and addresses.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	ListPaymentPending(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
	SetPaymentIntent(ctx context.Context, id, intentID string) error
	// MarkPaid confirms an order whose payment is not yet settled. It
	// reports false when the order was already paid or failed.
	MarkPaid(ctx context.Context, id, intentID string, paidAt time.Time) (bool, error)
	MarkPaymentFailed(ctx context.Context, id, intentID string) (bool, error)
	Stats(ctx context.Context) (*models.OrderStats, error)
}
