package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus is the lifecycle state of a product. Transitions are driven
// by administrators, not by the storefront.
type ProductStatus string

const (
	ProductStatusDraft      ProductStatus = "draft"
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock:
		return true
	}
	return false
}

type ProductType string

const (
	ProductTypePhysical ProductType = "physical"
	ProductTypeDigital  ProductType = "digital"
	ProductTypeService  ProductType = "service"
)

// Product represents a product in the store.
type Product struct {
	ID             string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name           string              `json:"name" gorm:"type:varchar(255);not null;index"`
	Description    string              `json:"description" gorm:"type:text"`
	Price          decimal.Decimal     `json:"price" gorm:"type:decimal(12,2);not null"`
	CompareAtPrice decimal.NullDecimal `json:"compareAtPrice" gorm:"type:decimal(12,2)"`
	Quantity       int                 `json:"inventoryQuantity" gorm:"not null;default:0;check:quantity >= 0"`
	Status         ProductStatus       `json:"status" gorm:"type:varchar(20);not null;default:draft;index"`
	ProductType    ProductType         `json:"productType" gorm:"type:varchar(20);not null;default:physical"`
	CategoryID     *string             `json:"categoryId" gorm:"type:varchar(36);index"`
	Category       *Category           `json:"category,omitempty"`
	Images         []ProductImage      `json:"images" gorm:"constraint:OnDelete:CASCADE"`
	Reviews        []Review            `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	if p.Status == "" {
		p.Status = ProductStatusDraft
	}
	if p.ProductType == "" {
		p.ProductType = ProductTypePhysical
	}
	return nil
}

// IsActive reports whether the product can be added to carts and sold.
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// SalePrice is the unit price charged at checkout: the compare-at price
// when one is set, the list price otherwise.
func (p *Product) SalePrice() decimal.Decimal {
	if p.CompareAtPrice.Valid {
		return p.CompareAtPrice.Decimal
	}
	return p.Price
}

// PrimaryImageURL returns the first image by position, or "".
func (p *Product) PrimaryImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	best := p.Images[0]
	for _, img := range p.Images[1:] {
		if img.Position < best.Position {
			best = img
		}
	}
	return best.URL
}

// ProductImage is one ordered image of a product.
type ProductImage struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string `json:"productId" gorm:"type:varchar(36);not null;index"`
	URL       string `json:"url" gorm:"type:varchar(1024);not null"`
	Alt       string `json:"alt" gorm:"type:varchar(255)"`
	Position  int    `json:"position" gorm:"not null;default:0"`
}

func (i *ProductImage) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}

// Review is a shopper's rating of a product.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"productId" gorm:"type:varchar(36);not null;index"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Content   string    `json:"content" gorm:"type:text"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}

// ProductView is a product shaped for shoppers, with derived rating fields.
type ProductView struct {
	Product
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// NewProductView derives the rating fields from the loaded reviews.
func NewProductView(p Product) ProductView {
	view := ProductView{Product: p, ReviewCount: len(p.Reviews)}
	if len(p.Reviews) > 0 {
		sum := 0
		for _, r := range p.Reviews {
			sum += r.Rating
		}
		view.AverageRating = float64(sum) / float64(len(p.Reviews))
	}
	return view
}
