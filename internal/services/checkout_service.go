package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPaymentMethod  = "card"
	defaultShippingMethod = "standard"
)

// CheckoutRequest is a shopper's order submission.
type CheckoutRequest struct {
	ShippingAddress models.Address  `json:"shippingAddress" validate:"required"`
	BillingAddress  *models.Address `json:"billingAddress" validate:"omitempty"`
	// UseBillingForShipping keeps the shipping address as billing address.
	// A distinct billing address is only used when this is false.
	UseBillingForShipping bool   `json:"useBillingForShipping"`
	PaymentMethod         string `json:"paymentMethod" validate:"omitempty,oneof=card upi cod"`
	ShippingMethod        string `json:"shippingMethod" validate:"omitempty,oneof=standard express"`
	Notes                 string `json:"notes" validate:"omitempty,max=1000"`
}

// CheckoutResult confirms a placed order.
type CheckoutResult struct {
	OrderID       string               `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// CheckoutService turns a cart into an order.
type CheckoutService struct {
	store   repositories.Store
	carts   *CartService
	orders  *OrderService
	pricing config.PricingConfig
	tracer  trace.Tracer
	now     func() time.Time
}

// NewCheckoutService creates a new CheckoutService. carts must be the
// CartService used by the HTTP layer so that both share cart locks.
func NewCheckoutService(store repositories.Store, carts *CartService, orders *OrderService, pricing config.PricingConfig) *CheckoutService {
	return &CheckoutService{
		store:   store,
		carts:   carts,
		orders:  orders,
		pricing: pricing,
		tracer:  otel.Tracer("storefront/checkout"),
		now:     time.Now,
	}
}

// SubmitOrder places an order for the cart. Validation, stock reservation,
// order creation and clearing the cart commit together or not at all.
// Payment runs after the commit; its outcome is reported in the result and
// never undoes the order.
func (s *CheckoutService) SubmitOrder(ctx context.Context, cartKey string, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.submit", trace.WithAttributes(attribute.String("cart.key", cartKey)))
	defer span.End()

	order, err := s.placeOrder(ctx, cartKey, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.KindOf(err)))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
		attribute.String("order.total", order.TotalAmount.String()),
	)
	log.Infof("order %s placed for cart %s, total %s %s", order.OrderNumber, cartKey, order.TotalAmount.StringFixed(2), order.Currency)
	publishOrderEvent(s.orders.publisher, models.EventOrderCreated, order)

	order = s.orders.collectPayment(ctx, order)

	return &CheckoutResult{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

func (s *CheckoutService) placeOrder(ctx context.Context, cartKey string, req CheckoutRequest) (*models.Order, error) {
	unlock := s.carts.lock(cartKey)
	defer unlock()

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		lines, err := tx.Carts().Lines(ctx, cartKey)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.EmptyCart(cartKey)
		}

		order = s.newOrder(ctx, req)
		subtotal := decimal.Zero
		for _, line := range lines {
			product, err := tx.Products().GetByID(ctx, line.ProductID)
			if err != nil {
				if apperr.IsKind(err, apperr.KindNotFound) {
					return apperr.ProductUnavailable(line.ProductID, line.ProductName)
				}
				return err
			}
			if !product.IsActive() || product.Quantity < line.Quantity {
				return apperr.ProductUnavailable(product.ID, product.Name)
			}

			price := product.SalePrice()
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   product.ID,
				Name:        product.Name,
				Description: product.Description,
				Price:       price,
				Quantity:    line.Quantity,
			})

			// The read above is advisory; this conditional update is what
			// stops two checkouts from selling the same last unit.
			ok, err := tx.Products().DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.ProductUnavailable(product.ID, product.Name)
			}
			orderID := order.ID
			if err := tx.Inventory().Record(ctx, &models.InventoryAdjustment{
				ProductID: product.ID,
				OrderID:   &orderID,
				Quantity:  -line.Quantity,
				Reason:    models.AdjustmentReasonSale,
			}); err != nil {
				return err
			}
		}

		totals := ComputeTotals(s.pricing, subtotal)
		order.Subtotal = totals.Subtotal
		order.TaxAmount = totals.Tax
		order.ShippingAmount = totals.Shipping
		order.DiscountAmount = totals.Discount
		order.TotalAmount = totals.Total

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		return tx.Carts().Clear(ctx, cartKey)
	})
	if err != nil {
		return nil, classify(err, "failed to process order")
	}
	return order, nil
}

// newOrder builds the order header and addresses. Items and totals are
// filled in by the caller.
func (s *CheckoutService) newOrder(ctx context.Context, req CheckoutRequest) *models.Order {
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}
	shippingMethod := req.ShippingMethod
	if shippingMethod == "" {
		shippingMethod = defaultShippingMethod
	}

	billing := req.ShippingAddress
	if !req.UseBillingForShipping && req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	return &models.Order{
		ID:             uuid.New().String(),
		OrderNumber:    s.orderNumber(),
		UserID:         userIDFrom(ctx),
		Status:         models.OrderStatusProcessing,
		PaymentStatus:  models.PaymentStatusPending,
		Currency:       s.pricing.Currency,
		PaymentMethod:  paymentMethod,
		ShippingMethod: shippingMethod,
		Notes:          req.Notes,
		Addresses: []models.OrderAddress{
			{Type: models.AddressTypeShipping, Address: req.ShippingAddress},
			{Type: models.AddressTypeBilling, Address: billing},
		},
	}
}

// orderNumber is ORD-<unix millis>-<8 random hex digits>. The millisecond
// prefix keeps numbers sortable by creation time; uniqueness is enforced by
// the unique index on orders.order_number.
func (s *CheckoutService) orderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", s.now().UnixMilli(), suffix)
}
