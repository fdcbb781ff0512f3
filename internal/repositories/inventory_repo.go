package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// InventoryRepository appends to and reads the inventory ledger.
type InventoryRepository interface {
	Record(ctx context.Context, adjustment *models.InventoryAdjustment) error
	ListByProduct(ctx context.Context, productID string) ([]models.InventoryAdjustment, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.InventoryAdjustment, error)
}

// GORMInventoryRepository is a GORM implementation of InventoryRepository.
type GORMInventoryRepository struct {
	db *gorm.DB
}

func NewGORMInventoryRepository(db *gorm.DB) *GORMInventoryRepository {
	return &GORMInventoryRepository{db: db}
}

var _ InventoryRepository = (*GORMInventoryRepository)(nil)

func (r *GORMInventoryRepository) Record(ctx context.Context, adjustment *models.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(adjustment).Error; err != nil {
		return fmt.Errorf("failed to record inventory adjustment: %w", err)
	}
	return nil
}

func (r *GORMInventoryRepository) ListByProduct(ctx context.Context, productID string) ([]models.InventoryAdjustment, error) {
	return r.list(ctx, "product_id = ?", productID)
}

func (r *GORMInventoryRepository) ListByOrder(ctx context.Context, orderID string) ([]models.InventoryAdjustment, error) {
	return r.list(ctx, "order_id = ?", orderID)
}

func (r *GORMInventoryRepository) list(ctx context.Context, query, arg string) ([]models.InventoryAdjustment, error) {
	var adjustments []models.InventoryAdjustment
	if err := r.db.WithContext(ctx).Where(query, arg).Order("created_at ASC").Find(&adjustments).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory adjustments: %w", err)
	}
	return adjustments, nil
}
