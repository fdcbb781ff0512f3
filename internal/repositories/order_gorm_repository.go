package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

var _ OrderRepository = (*GORMOrderRepository)(nil)

func (r *GORMOrderRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items").Preload("Addresses")
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order in repository: %w", err)
	}
	return nil
}

func (r *GORMOrderRepository) first(ctx context.Context, what, query string, arg string) (*models.Order, error) {
	var order models.Order
	if err := r.withRelations(ctx).First(&order, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order with %s %s not found", what, arg)
		}
		return nil, fmt.Errorf("failed to get order by %s %s: %w", what, arg, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.first(ctx, "ID", "id = ?", id)
}

func (r *GORMOrderRepository) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	return r.first(ctx, "number", "order_number = ?", number)
}

func (r *GORMOrderRepository) GetByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	return r.first(ctx, "payment intent", "payment_intent_id = ?", intentID)
}

func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withRelations(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders of user %s: %w", userID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withRelations(ctx).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) ListPaymentPending(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ?", models.OrderStatusProcessing, models.PaymentStatusPending).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment-pending orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another; it fails with
// Conflict when the order is no longer in from.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("order %s is no longer %s", id, from)
	}
	return nil
}

func (r *GORMOrderRepository) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("payment_intent_id", intentID).Error
	if err != nil {
		return fmt.Errorf("failed to record payment intent for order %s: %w", id, err)
	}
	return nil
}

func (r *GORMOrderRepository) MarkPaid(ctx context.Context, id, intentID string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?", id, models.OrderStatusProcessing, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":            models.OrderStatusConfirmed,
			"payment_status":    models.PaymentStatusPaid,
			"payment_intent_id": intentID,
			"paid_at":           paidAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMOrderRepository) MarkPaymentFailed(ctx context.Context, id, intentID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status":    models.PaymentStatusFailed,
			"payment_intent_id": intentID,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark payment of order %s failed: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMOrderRepository) Stats(ctx context.Context) (*models.OrderStats, error) {
	stats := &models.OrderStats{TotalRevenue: decimal.Zero}
	db := r.db.WithContext(ctx).Model(&models.Order{})
	if err := db.Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var revenue decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COUNT(*), SUM(total_amount)").
		Where("payment_status = ?", models.PaymentStatusPaid).
		Row()
	if err := row.Scan(&stats.PaidOrders, &revenue); err != nil {
		return nil, fmt.Errorf("failed to sum paid orders: %w", err)
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	}
	return stats, nil
}
