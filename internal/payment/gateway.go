// Package payment abstracts the payment gateway the checkout charges
// orders through.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrDeclined is returned when the gateway refuses the charge. Declines are
// final and never retried.
var ErrDeclined = errors.New("payment declined")

// ErrUnknownIntent is returned by Status for an intent the gateway never issued.
var ErrUnknownIntent = errors.New("unknown payment intent")

// IntentStatus is the gateway-side state of a charge.
type IntentStatus string

const (
	IntentSucceeded IntentStatus = "succeeded"
	IntentPending   IntentStatus = "pending"
	IntentFailed    IntentStatus = "failed"
)

// ChargeRequest asks the gateway to capture Amount for an order.
type ChargeRequest struct {
	// IdempotencyKey makes repeated charges for the same order return the
	// same intent. The checkout uses the order id.
	IdempotencyKey string
	OrderNumber    string
	Amount         decimal.Decimal
	Currency       string
	Method         string
}

// ChargeResult describes a payment intent.
type ChargeResult struct {
	IntentID    string
	Status      IntentStatus
	ProcessedAt time.Time
}

// Gateway is a payment provider.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Status(ctx context.Context, intentID string) (*ChargeResult, error)
}
