package services_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/pkg/rabbitmq"
	"storefront/internal/services"
	"storefront/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{13}-[0-9A-F]{8}$`)

func TestCheckoutService_SubmitOrder(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := testutil.Product(t, e.store, "Headphones", 100, 5)
	b := testutil.Product(t, e.store, "Charger", 50, 5)

	_, err := e.carts.AddItem(ctx, "k", a.ID, 2)
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, "k", b.ID, 1)
	require.NoError(t, err)

	result, err := e.checkout.SubmitOrder(ctx, "k", checkoutRequest())
	require.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, result.OrderNumber)
	assert.Equal(t, models.OrderStatusConfirmed, result.Status)
	assert.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)

	order, err := e.store.Orders().GetByID(ctx, result.OrderID)
	require.NoError(t, err)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(250)), "subtotal %s", order.Subtotal)
	assert.True(t, order.TaxAmount.Equal(decimal.NewFromInt(20)), "tax %s", order.TaxAmount)
	assert.True(t, order.ShippingAmount.IsZero(), "shipping %s", order.ShippingAmount)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(270)), "total %s", order.TotalAmount)
	assert.True(t, result.TotalAmount.Equal(order.TotalAmount))
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "card", order.PaymentMethod)
	assert.Equal(t, "standard", order.ShippingMethod)
	assert.Nil(t, order.UserID)
	require.Len(t, order.Items, 2)
	require.Len(t, order.Addresses, 2)
	billing := order.Address(models.AddressTypeBilling)
	require.NotNil(t, billing)
	assert.Equal(t, "12 MG Road", billing.Address1)

	assert.Equal(t, 3, reloadProduct(t, e.store, a.ID).Quantity)
	assert.Equal(t, 4, reloadProduct(t, e.store, b.ID).Quantity)

	ledger, err := e.store.Inventory().ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	for _, adj := range ledger {
		assert.Equal(t, models.AdjustmentReasonSale, adj.Reason)
		assert.Negative(t, adj.Quantity)
	}

	cart, err := e.carts.GetCart(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	e.publisher.AssertCalled(t, "Publish", rabbitmq.OrderExchange, models.EventOrderCreated, mock.Anything)
	e.publisher.AssertCalled(t, "Publish", rabbitmq.OrderExchange, models.EventOrderConfirmed, mock.Anything)
}

func TestCheckoutService_ShippingBelowThreshold(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.Product(t, e.store, "Pen", 50, 10)
	_, err := e.carts.AddItem(ctx, "k", p.ID, 1)
	require.NoError(t, err)

	result, err := e.checkout.SubmitOrder(ctx, "k", checkoutRequest())
	require.NoError(t, err)

	order, err := e.store.Orders().GetByID(ctx, result.OrderID)
	require.NoError(t, err)
	assert.True(t, order.TaxAmount.Equal(decimal.NewFromInt(4)))
	assert.True(t, order.ShippingAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(154)))
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	e := newEnv(t)
	_, err := e.checkout.SubmitOrder(context.Background(), "empty", checkoutRequest())
	assert.Equal(t, apperr.KindEmptyCart, apperr.KindOf(err))
	assert.Equal(t, 0, countOrders(t, e.store))
}

func TestCheckoutService_FailureIsAtomic(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := testutil.Product(t, e.store, "Tablet", 300, 5)
	b := testutil.Product(t, e.store, "Stylus", 40, 5)

	_, err := e.carts.AddItem(ctx, "k", a.ID, 2)
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, "k", b.ID, 1)
	require.NoError(t, err)
	require.NoError(t, e.store.Products().UpdateStatus(ctx, b.ID, models.ProductStatusInactive))

	_, err = e.checkout.SubmitOrder(ctx, "k", checkoutRequest())
	assert.Equal(t, apperr.KindProductUnavailable, apperr.KindOf(err))
	assert.Equal(t, b.ID, apperr.ProductIDOf(err))

	assert.Equal(t, 0, countOrders(t, e.store))
	assert.Equal(t, 5, reloadProduct(t, e.store, a.ID).Quantity, "earlier lines are rolled back")
	ledger, err := e.store.Inventory().ListByProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)

	cart, err := e.carts.GetCart(ctx, "k")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2, "cart survives a failed checkout")
}

func TestCheckoutService_StockChangedSinceAdd(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.Product(t, e.store, "Lamp", 80, 3)
	_, err := e.carts.AddItem(ctx, "k", p.ID, 3)
	require.NoError(t, err)

	ok, err := e.store.Products().DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.checkout.SubmitOrder(ctx, "k", checkoutRequest())
	assert.Equal(t, apperr.KindProductUnavailable, apperr.KindOf(err))
	assert.Equal(t, 1, reloadProduct(t, e.store, p.ID).Quantity)
}

func TestCheckoutService_LastUnitSoldOnce(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.Product(t, e.store, "Limited Print", 500, 1)

	const shoppers = 5
	for i := 0; i < shoppers; i++ {
		_, err := e.carts.AddItem(ctx, cartKey(i), p.ID, 1)
		require.NoError(t, err)
	}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		successes   int
		unavailable int
	)
	for i := 0; i < shoppers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.checkout.SubmitOrder(ctx, cartKey(i), checkoutRequest())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperr.IsKind(err, apperr.KindProductUnavailable):
				unavailable++
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, shoppers-1, unavailable)
	assert.Equal(t, 0, reloadProduct(t, e.store, p.ID).Quantity)
	assert.Equal(t, 1, countOrders(t, e.store))
}

func TestCheckoutService_OrderNumbersAreUnique(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.Product(t, e.store, "Sticker", 5, 100)

	const n = 10
	for i := 0; i < n; i++ {
		_, err := e.carts.AddItem(ctx, cartKey(i), p.ID, 1)
		require.NoError(t, err)
	}

	results := make([]*services.CheckoutResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := e.checkout.SubmitOrder(ctx, cartKey(i), checkoutRequest())
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, r := range results {
		require.NotNil(t, r)
		assert.Regexp(t, orderNumberPattern, r.OrderNumber)
		assert.False(t, seen[r.OrderNumber], "duplicate order number %s", r.OrderNumber)
		seen[r.OrderNumber] = true

		order, err := e.orders.GetOrderByNumber(ctx, r.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, r.OrderID, order.ID)
	}
}

func TestCheckoutService_BillingAddress(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.Product(t, e.store, "Desk", 900, 2)
	_, err := e.carts.AddItem(ctx, "k", p.ID, 1)
	require.NoError(t, err)

	billing := shippingAddress()
	billing.Address1 = "1 Residency Road"
	req := services.CheckoutRequest{
		ShippingAddress: shippingAddress(),
		BillingAddress:  &billing,
		PaymentMethod:   "upi",
		ShippingMethod:  "express",
		Notes:           "leave at the door",
	}
	result, err := e.checkout.SubmitOrder(ctx, "k", req)
	require.NoError(t, err)

	order, err := e.store.Orders().GetByID(ctx, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "upi", order.PaymentMethod)
	assert.Equal(t, "express", order.ShippingMethod)
	assert.Equal(t, "leave at the door", order.Notes)
	assert.Equal(t, "1 Residency Road", order.Address(models.AddressTypeBilling).Address1)
	assert.Equal(t, "12 MG Road", order.Address(models.AddressTypeShipping).Address1)
}

func TestCheckoutService_OrderOwnedBySignedInUser(t *testing.T) {
	e := newEnv(t)
	p := testutil.Product(t, e.store, "Mug", 12, 4)
	ctx := asUser("u1", models.RoleCustomer)
	_, err := e.carts.AddItem(ctx, "user:u1", p.ID, 1)
	require.NoError(t, err)

	result, err := e.checkout.SubmitOrder(ctx, "user:u1", checkoutRequest())
	require.NoError(t, err)

	order, err := e.store.Orders().GetByID(ctx, result.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, "u1", *order.UserID)
}

func TestCheckoutService_PaymentDeclined(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.gateway.Decline = func(payment.ChargeRequest) bool { return true }
	p := testutil.Product(t, e.store, "Camera", 700, 2)
	_, err := e.carts.AddItem(ctx, "k", p.ID, 1)
	require.NoError(t, err)

	result, err := e.checkout.SubmitOrder(ctx, "k", checkoutRequest())
	require.NoError(t, err, "a declined payment does not undo the order")
	assert.Equal(t, models.OrderStatusProcessing, result.Status)
	assert.Equal(t, models.PaymentStatusFailed, result.PaymentStatus)
	assert.Equal(t, 1, reloadProduct(t, e.store, p.ID).Quantity)
	assert.Equal(t, 1, e.gateway.Charges(), "declines are not retried")

	e.publisher.AssertCalled(t, "Publish", rabbitmq.OrderExchange, models.EventPaymentFailed, mock.Anything)
	e.publisher.AssertNotCalled(t, "Publish", rabbitmq.OrderExchange, models.EventOrderConfirmed, mock.Anything)
}

func TestCheckoutService_PaymentTimeoutLeavesOrderPending(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.gateway.Delay = 200 * time.Millisecond
	e.orders = services.NewOrderService(e.store, e.gateway, e.publisher, fastTimeout())
	e.checkout = services.NewCheckoutService(e.store, e.carts, e.orders, testPricing)

	p := testutil.Product(t, e.store, "Drone", 1500, 1)
	_, err := e.carts.AddItem(ctx, "k", p.ID, 1)
	require.NoError(t, err)

	result, err := e.checkout.SubmitOrder(ctx, "k", checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, result.Status)
	assert.Equal(t, models.PaymentStatusPending, result.PaymentStatus)
	assert.Equal(t, 0, reloadProduct(t, e.store, p.ID).Quantity)

	pending, err := e.store.Orders().ListPaymentPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, result.OrderID, pending[0].ID)
}

func cartKey(i int) string {
	return "cart-" + string(rune('a'+i))
}
