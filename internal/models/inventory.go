package models

import (
	"time"

	"gorm.io/gorm"
)

// Inventory adjustment reasons.
const (
	AdjustmentReasonSale         = "Sale"
	AdjustmentReasonRestock      = "Restock"
	AdjustmentReasonCancellation = "Cancellation"
)

// InventoryAdjustment is an append-only ledger entry of a signed stock delta.
type InventoryAdjustment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"productId" gorm:"type:varchar(36);not null;index"`
	OrderID   *string   `json:"orderId,omitempty" gorm:"type:varchar(36);index"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Reason    string    `json:"reason" gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *InventoryAdjustment) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}
