package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus follows pending → processing → confirmed → shipped →
// delivered, with cancelled and refunded as terminal alternates.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	if _, ok := orderTransitions[s]; ok {
		return true
	}
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// CanTransitionTo reports whether an order in s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order represents a customer order.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber     string          `json:"orderNumber" gorm:"uniqueIndex;type:varchar(64);not null"`
	UserID          *string         `json:"userId" gorm:"type:varchar(36);index"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(20);not null;index"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	TaxAmount       decimal.Decimal `json:"taxAmount" gorm:"type:decimal(12,2);not null"`
	ShippingAmount  decimal.Decimal `json:"shippingAmount" gorm:"type:decimal(12,2);not null"`
	DiscountAmount  decimal.Decimal `json:"discountAmount" gorm:"type:decimal(12,2);not null"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);not null"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"type:varchar(20)"`
	PaymentIntentID string          `json:"paymentIntentId" gorm:"type:varchar(100);index"`
	ShippingMethod  string          `json:"shippingMethod" gorm:"type:varchar(20)"`
	Notes           string          `json:"notes" gorm:"type:text"`
	Items           []OrderItem     `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	Addresses       []OrderAddress  `json:"addresses" gorm:"constraint:OnDelete:CASCADE"`
	PaidAt          *time.Time      `json:"paidAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	newID(&o.ID)
	return nil
}

// Address returns the order address of the given type, if present.
func (o *Order) Address(t AddressType) *OrderAddress {
	for i := range o.Addresses {
		if o.Addresses[i].Type == t {
			return &o.Addresses[i]
		}
	}
	return nil
}

// OrderItem is an immutable snapshot of a purchased line. ProductID is kept
// for reference only; name, description and price never follow the catalog.
type OrderItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string          `json:"orderId" gorm:"type:varchar(36);not null;index"`
	ProductID   string          `json:"productId" gorm:"type:varchar(36);index"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	VariantName string          `json:"variantName,omitempty" gorm:"type:varchar(255)"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}

// LineTotal is price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type AddressType string

const (
	AddressTypeShipping AddressType = "shipping"
	AddressTypeBilling  AddressType = "billing"
)

// Address is a postal address as entered by the shopper.
type Address struct {
	FirstName  string `json:"firstName" gorm:"type:varchar(100)" validate:"required,max=100"`
	LastName   string `json:"lastName" gorm:"type:varchar(100)" validate:"required,max=100"`
	Company    string `json:"company,omitempty" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	Address1   string `json:"address1" gorm:"type:varchar(255)" validate:"required,max=255"`
	Address2   string `json:"address2,omitempty" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	City       string `json:"city" gorm:"type:varchar(100)" validate:"required,max=100"`
	State      string `json:"state" gorm:"type:varchar(100)" validate:"required,max=100"`
	PostalCode string `json:"postalCode" gorm:"type:varchar(20)" validate:"required,max=20"`
	Country    string `json:"country" gorm:"type:varchar(2)" validate:"required,len=2"`
	Phone      string `json:"phone,omitempty" gorm:"type:varchar(30)" validate:"omitempty,max=30"`
}

// OrderAddress is a typed address attached to an order.
type OrderAddress struct {
	ID      string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID string      `json:"orderId" gorm:"type:varchar(36);not null;index"`
	Type    AddressType `json:"type" gorm:"type:varchar(20);not null"`
	Address `gorm:"embedded"`
}

func (a *OrderAddress) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}

// OrderStats aggregates orders for the admin dashboard.
type OrderStats struct {
	TotalOrders  int64           `json:"totalOrders"`
	PaidOrders   int64           `json:"paidOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}
