package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is identified by its cart key. It is created on first mutation and
// cleared, never deleted, on checkout.
type Cart struct {
	Key       string     `json:"id" gorm:"column:cart_key;primaryKey;type:varchar(100)"`
	UserID    *string    `json:"userId" gorm:"type:varchar(36);index"`
	Lines     []CartLine `json:"items" gorm:"foreignKey:CartKey;references:Key;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine is one product and quantity within a cart, with a snapshot of
// the product taken when the line was created.
type CartLine struct {
	ID             string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartKey        string              `json:"-" gorm:"type:varchar(100);not null;uniqueIndex:idx_cart_product"`
	ProductID      string              `json:"productId" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_product"`
	Quantity       int                 `json:"quantity" gorm:"not null"`
	ProductName    string              `json:"productName" gorm:"type:varchar(255)"`
	UnitPrice      decimal.Decimal     `json:"unitPrice" gorm:"type:decimal(12,2)"`
	CompareAtPrice decimal.NullDecimal `json:"compareAtPrice" gorm:"type:decimal(12,2)"`
	ImageURL       string              `json:"imageUrl" gorm:"type:varchar(1024)"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func (l *CartLine) BeforeCreate(tx *gorm.DB) error {
	newID(&l.ID)
	return nil
}

// Snapshot copies the display fields of p onto the line.
func (l *CartLine) Snapshot(p *Product) {
	l.ProductName = p.Name
	l.UnitPrice = p.Price
	l.CompareAtPrice = p.CompareAtPrice
	l.ImageURL = p.PrimaryImageURL()
}
