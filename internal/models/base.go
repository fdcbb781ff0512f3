package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// newID fills an empty string primary key before insert.
func newID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&ProductImage{},
		&Review{},
		&Cart{},
		&CartLine{},
		&Order{},
		&OrderItem{},
		&OrderAddress{},
		&InventoryAdjustment{},
		&Wishlist{},
		&WishlistItem{},
	}
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

func init() {
	// Prices render as JSON numbers rather than quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
