package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

var _ CartRepository = (*GORMCartRepository)(nil)

func (r *GORMCartRepository) Ensure(ctx context.Context, key string, userID *string) error {
	cart := models.Cart{Key: key, UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return fmt.Errorf("failed to create cart %s: %w", key, err)
	}
	return nil
}

func (r *GORMCartRepository) Get(ctx context.Context, key string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Order("id ASC") }).
		First(&cart, "cart_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart %s: %w", key, err)
	}
	return &cart, nil
}

func (r *GORMCartRepository) Lines(ctx context.Context, key string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_key = ?", key).
		Order("created_at ASC").Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", key, err)
	}
	return lines, nil
}

func (r *GORMCartRepository) LineByProduct(ctx context.Context, key, productID string) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).First(&line, "cart_key = ? AND product_id = ?", key, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart line for product %s: %w", productID, err)
	}
	return &line, nil
}

func (r *GORMCartRepository) CreateLine(ctx context.Context, line *models.CartLine) error {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return fmt.Errorf("failed to create cart line: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) UpdateLineQuantity(ctx context.Context, lineID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartLine{}).Where("id = ?", lineID).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line %s: %w", lineID, res.Error)
	}
	return nil
}

func (r *GORMCartRepository) DeleteLine(ctx context.Context, key, lineID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("cart_key = ? AND id = ?", key, lineID).Delete(&models.CartLine{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete cart line %s: %w", lineID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GORMCartRepository) Clear(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("cart_key = ?", key).Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", key, err)
	}
	return nil
}
