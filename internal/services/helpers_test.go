package services_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

var testPricing = config.PricingConfig{
	Currency:              "INR",
	TaxRate:               decimal.RequireFromString("0.08"),
	FreeShippingThreshold: decimal.NewFromInt(200),
	FlatShippingFee:       decimal.NewFromInt(100),
}

type env struct {
	store     *repositories.GORMStore
	gateway   *payment.SimulatedGateway
	publisher *MockPublisher
	carts     *services.CartService
	orders    *services.OrderService
	checkout  *services.CheckoutService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := testutil.NewStore(t)
	gateway := payment.NewSimulatedGateway(0)
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	paymentCfg := config.PaymentConfig{Timeout: time.Second, MaxAttempts: 1, RetryBackoff: time.Millisecond}
	carts := services.NewCartService(store)
	orders := services.NewOrderService(store, gateway, publisher, paymentCfg)
	return &env{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		carts:     carts,
		orders:    orders,
		checkout:  services.NewCheckoutService(store, carts, orders, testPricing),
	}
}

func shippingAddress() models.Address {
	return models.Address{
		FirstName:  "Asha",
		LastName:   "Rao",
		Address1:   "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Country:    "IN",
	}
}

func checkoutRequest() services.CheckoutRequest {
	return services.CheckoutRequest{ShippingAddress: shippingAddress(), UseBillingForShipping: true}
}

func asUser(id string, role models.Role) context.Context {
	return services.WithPrincipal(context.Background(), &services.Principal{UserID: id, Username: id, Role: role})
}

func reloadProduct(t *testing.T, store repositories.Store, id string) *models.Product {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func countOrders(t *testing.T, store repositories.Store) int {
	t.Helper()
	orders, err := store.Orders().GetAll(context.Background())
	require.NoError(t, err)
	return len(orders)
}

func fastTimeout() config.PaymentConfig {
	return config.PaymentConfig{Timeout: 20 * time.Millisecond, MaxAttempts: 1, RetryBackoff: time.Millisecond}
}
