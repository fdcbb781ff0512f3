package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"gorm.io/gorm"
)

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.Wishlist, error)
	Create(ctx context.Context, wishlist *models.Wishlist) error
	Items(ctx context.Context, wishlistID string) ([]models.WishlistItem, error)
	FindItem(ctx context.Context, wishlistID, productID string) (*models.WishlistItem, error)
	AddItem(ctx context.Context, item *models.WishlistItem) error
	RemoveItem(ctx context.Context, wishlistID, productID string) (int64, error)
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

var _ WishlistRepository = (*GORMWishlistRepository)(nil)

func (r *GORMWishlistRepository) GetByUser(ctx context.Context, userID string) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	if err := r.db.WithContext(ctx).First(&wishlist, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("wishlist of user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to get wishlist of user %s: %w", userID, err)
	}
	return &wishlist, nil
}

func (r *GORMWishlistRepository) Create(ctx context.Context, wishlist *models.Wishlist) error {
	if err := r.db.WithContext(ctx).Create(wishlist).Error; err != nil {
		return fmt.Errorf("failed to create wishlist: %w", err)
	}
	return nil
}

func (r *GORMWishlistRepository) Items(ctx context.Context, wishlistID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product.Images").
		Preload("Product.Reviews").
		Where("wishlist_id = ?", wishlistID).
		Order("added_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	return items, nil
}

func (r *GORMWishlistRepository) FindItem(ctx context.Context, wishlistID, productID string) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).First(&item, "wishlist_id = ? AND product_id = ?", wishlistID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up wishlist item: %w", err)
	}
	return &item, nil
}

func (r *GORMWishlistRepository) AddItem(ctx context.Context, item *models.WishlistItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *GORMWishlistRepository) RemoveItem(ctx context.Context, wishlistID, productID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove wishlist item: %w", res.Error)
	}
	return res.RowsAffected, nil
}
