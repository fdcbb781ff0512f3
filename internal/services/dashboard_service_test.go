package services_test

import (
	"context"
	"testing"

	"storefront/internal/payment"
	"storefront/internal/services"
	"storefront/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Overview(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	garden := testutil.Category(t, e.store, "Home & Garden", "home-garden", "")
	p := testutil.Product(t, e.store, "Rake", 300, 10, testutil.WithCategory(garden))

	placeOrder(t, e, ctx, "paid", p, 1)
	e.gateway.Decline = func(payment.ChargeRequest) bool { return true }
	placeOrder(t, e, ctx, "declined", p, 1)

	overview, err := services.NewDashboardService(e.store).Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.TotalProducts)
	assert.Equal(t, int64(1), overview.TotalCategories)
	assert.Equal(t, int64(2), overview.Orders.TotalOrders)
	assert.Equal(t, int64(1), overview.Orders.PaidOrders)
	// 300 + 24 tax, shipping free above 200
	assert.True(t, overview.Orders.TotalRevenue.Equal(decimal.NewFromInt(324)), "revenue %s", overview.Orders.TotalRevenue)
	require.Len(t, overview.Categories, 1)
	assert.Equal(t, int64(1), overview.Categories[0].ProductCount)
}
