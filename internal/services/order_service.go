package services

import (
	"context"
	"errors"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/repositories"

	"github.com/gofiber/fiber/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderService is the read model for placed orders and owns their
// payment settlement.
type OrderService struct {
	store     repositories.Store
	gateway   payment.Gateway
	publisher EventPublisher
	payment   config.PaymentConfig
	tracer    trace.Tracer
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(store repositories.Store, gateway payment.Gateway, publisher EventPublisher, paymentCfg config.PaymentConfig) *OrderService {
	return &OrderService{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		payment:   paymentCfg,
		tracer:    otel.Tracer("storefront/orders"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PaymentEvent is an asynchronous payment notification from the gateway.
type PaymentEvent struct {
	OrderID  string               `json:"orderId"`
	IntentID string               `json:"intentId" validate:"required"`
	Status   payment.IntentStatus `json:"status" validate:"required,oneof=succeeded failed pending"`
}

// ReconcileReport summarizes a ReconcilePending run.
type ReconcileReport struct {
	Checked   int `json:"checked"`
	Confirmed int `json:"confirmed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// GetOrder returns an order the caller may see. Orders of other users are
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "failed to load order")
	}
	if !canView(ctx, order) {
		return nil, apperr.NotFound("order with ID %s not found", id)
	}
	return order, nil
}

// GetOrderByNumber returns an order by its human-facing number.
func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, err := s.store.Orders().GetByNumber(ctx, number)
	if err != nil {
		return nil, classify(err, "failed to load order")
	}
	if !canView(ctx, order) {
		return nil, apperr.NotFound("order %s not found", number)
	}
	return order, nil
}

// ListOrders returns the caller's orders, or every order for admins.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	p := PrincipalFrom(ctx)
	if p == nil {
		return nil, apperr.Unauthorized("sign in to list orders")
	}

	var (
		orders []models.Order
		err    error
	)
	if p.IsAdmin() {
		orders, err = s.store.Orders().GetAll(ctx)
	} else {
		orders, err = s.store.Orders().ListByUser(ctx, p.UserID)
	}
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list orders")
	}
	return orders, nil
}

// canView allows guest orders to anyone holding their id, and user orders
// to their owner and admins.
func canView(ctx context.Context, order *models.Order) bool {
	if order.UserID == nil {
		return true
	}
	p := PrincipalFrom(ctx)
	return p.IsAdmin() || (p != nil && p.UserID == *order.UserID)
}

// UpdateOrderStatus advances an order along the fulfilment lifecycle.
// Cancelling returns the order's items to stock.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.InvalidArgument("invalid order status: %s", status)
	}

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		order, err := tx.Orders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return apperr.Conflict("order %s cannot move from %s to %s", order.OrderNumber, order.Status, status)
		}
		if err := tx.Orders().UpdateStatus(ctx, id, order.Status, status); err != nil {
			return err
		}
		if status != models.OrderStatusCancelled {
			return nil
		}
		for _, item := range order.Items {
			if item.ProductID == "" {
				continue
			}
			if err := tx.Products().IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if apperr.IsKind(err, apperr.KindNotFound) {
					continue
				}
				return err
			}
			orderID := order.ID
			if err := tx.Inventory().Record(ctx, &models.InventoryAdjustment{
				ProductID: item.ProductID,
				OrderID:   &orderID,
				Quantity:  item.Quantity,
				Reason:    models.AdjustmentReasonCancellation,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "failed to update order status")
	}

	log.Infof("order %s moved to %s", id, status)
	return s.store.Orders().GetByID(ctx, id)
}

// collectPayment charges a freshly placed order. A decline marks the
// payment failed; a timeout or transport error leaves it pending for
// reconciliation. The returned order reflects the outcome.
func (s *OrderService) collectPayment(ctx context.Context, order *models.Order) *models.Order {
	ctx, span := s.tracer.Start(ctx, "payment.charge", trace.WithAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
	))
	defer span.End()

	result, err := s.charge(ctx, order)
	if err != nil && !errors.Is(err, payment.ErrDeclined) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment not settled")
		log.Warnf("payment for order %s not settled, left pending: %v", order.OrderNumber, err)
		return order
	}

	status := payment.IntentFailed
	intentID := ""
	if result != nil {
		status = result.Status
		intentID = result.IntentID
	}
	updated, applyErr := s.applyOutcome(ctx, order, intentID, status)
	if applyErr != nil {
		span.RecordError(applyErr)
		log.Errorf("failed to record payment outcome for order %s: %v", order.OrderNumber, applyErr)
		return order
	}
	span.SetAttributes(attribute.String("payment.status", string(updated.PaymentStatus)))
	return updated
}

// charge calls the gateway with the configured timeout and retry policy.
// The order id is the idempotency key, so retries never double charge.
func (s *OrderService) charge(ctx context.Context, order *models.Order) (*payment.ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.payment.Timeout)
	defer cancel()

	retry := payment.DefaultRetryConfig()
	retry.MaxAttempts = s.payment.MaxAttempts
	if s.payment.RetryBackoff > 0 {
		retry.InitialDelay = s.payment.RetryBackoff
	}

	req := payment.ChargeRequest{
		IdempotencyKey: order.ID,
		OrderNumber:    order.OrderNumber,
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
		Method:         order.PaymentMethod,
	}
	var result *payment.ChargeResult
	err := payment.Retry(ctx, retry, func(ctx context.Context) error {
		r, err := s.gateway.Charge(ctx, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// applyOutcome records a gateway verdict. Orders already settled are left
// untouched, which makes repeated notifications harmless.
func (s *OrderService) applyOutcome(ctx context.Context, order *models.Order, intentID string, status payment.IntentStatus) (*models.Order, error) {
	switch status {
	case payment.IntentSucceeded:
		paidAt := s.now()
		changed, err := s.store.Orders().MarkPaid(ctx, order.ID, intentID, paidAt)
		if err != nil {
			return nil, err
		}
		if changed {
			log.Infof("order %s paid (intent %s)", order.OrderNumber, intentID)
			order.Status = models.OrderStatusConfirmed
			order.PaymentStatus = models.PaymentStatusPaid
			order.PaymentIntentID = intentID
			order.PaidAt = &paidAt
			publishOrderEvent(s.publisher, models.EventOrderConfirmed, order)
		}
	case payment.IntentFailed:
		changed, err := s.store.Orders().MarkPaymentFailed(ctx, order.ID, intentID)
		if err != nil {
			return nil, err
		}
		if changed {
			log.Warnf("payment for order %s declined", order.OrderNumber)
			order.PaymentStatus = models.PaymentStatusFailed
			order.PaymentIntentID = intentID
			publishOrderEvent(s.publisher, models.EventPaymentFailed, order)
		}
	default:
		if intentID != "" && intentID != order.PaymentIntentID {
			if err := s.store.Orders().SetPaymentIntent(ctx, order.ID, intentID); err != nil {
				return nil, err
			}
			order.PaymentIntentID = intentID
		}
	}
	return order, nil
}

// ApplyPaymentEvent applies a gateway webhook. The order is found by id
// when given, by payment intent otherwise.
func (s *OrderService) ApplyPaymentEvent(ctx context.Context, event PaymentEvent) (*models.Order, error) {
	var (
		order *models.Order
		err   error
	)
	if event.OrderID != "" {
		order, err = s.store.Orders().GetByID(ctx, event.OrderID)
	} else {
		order, err = s.store.Orders().GetByPaymentIntent(ctx, event.IntentID)
	}
	if err != nil {
		return nil, classify(err, "failed to load order for payment event")
	}
	if order.PaymentIntentID != "" && order.PaymentIntentID != event.IntentID {
		return nil, apperr.Conflict("payment intent %s does not belong to order %s", event.IntentID, order.OrderNumber)
	}

	order, err = s.applyOutcome(ctx, order, event.IntentID, event.Status)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to apply payment event")
	}
	return order, nil
}

// ReconcilePending settles every order whose payment is still pending,
// asking the gateway for known intents and re-charging (idempotently)
// orders that never received one.
func (s *OrderService) ReconcilePending(ctx context.Context) (*ReconcileReport, error) {
	orders, err := s.store.Orders().ListPaymentPending(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list pending orders")
	}

	report := &ReconcileReport{}
	for i := range orders {
		order := &orders[i]
		report.Checked++

		var result *payment.ChargeResult
		if order.PaymentIntentID != "" {
			result, err = s.gateway.Status(ctx, order.PaymentIntentID)
		} else {
			result, err = s.charge(ctx, order)
		}
		if errors.Is(err, payment.ErrDeclined) {
			result, err = &payment.ChargeResult{Status: payment.IntentFailed}, nil
		}
		if err != nil {
			log.Warnf("order %s still pending: %v", order.OrderNumber, err)
			report.Pending++
			continue
		}

		if _, err := s.applyOutcome(ctx, order, result.IntentID, result.Status); err != nil {
			return report, apperr.Unexpected(err, "failed to reconcile order %s", order.OrderNumber)
		}
		switch order.PaymentStatus {
		case models.PaymentStatusPaid:
			report.Confirmed++
		case models.PaymentStatusFailed:
			report.Failed++
		default:
			report.Pending++
		}
	}
	log.Infof("reconciled %d pending orders: %d confirmed, %d failed, %d pending",
		report.Checked, report.Confirmed, report.Failed, report.Pending)
	return report, nil
}
