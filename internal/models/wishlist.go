package models

import (
	"time"

	"gorm.io/gorm"
)

type Wishlist struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string         `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Items     []WishlistItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (w *Wishlist) BeforeCreate(tx *gorm.DB) error {
	newID(&w.ID)
	return nil
}

type WishlistItem struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	WishlistID string    `json:"wishlistId" gorm:"type:varchar(36);not null;uniqueIndex:idx_wishlist_product"`
	ProductID  string    `json:"productId" gorm:"type:varchar(36);not null;uniqueIndex:idx_wishlist_product"`
	Product    *Product  `json:"product,omitempty"`
	AddedAt    time.Time `json:"addedAt" gorm:"autoCreateTime"`
}

func (i *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}
