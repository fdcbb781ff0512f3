package services_test

import (
	"context"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistService(t *testing.T) {
	store := testutil.NewStore(t)
	svc := services.NewWishlistService(store)
	a := testutil.Product(t, store, "Tent", 300, 2, testutil.WithRatings(5))
	b := testutil.Product(t, store, "Stove", 80, 2)
	ctx := asUser("camper", models.RoleCustomer)

	_, err := svc.List(context.Background())
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.Add(ctx, a.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, b.ID)
	require.NoError(t, err)

	_, err = svc.Add(ctx, a.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	_, err = svc.Add(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.Add(ctx, "")
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	items, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	ids := []string{items[0].ProductID, items[1].ProductID}
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)
	for _, item := range items {
		require.NotNil(t, item.Product)
		if item.ProductID == a.ID {
			assert.Equal(t, 1, item.Product.ReviewCount)
		}
	}

	require.NoError(t, svc.Remove(ctx, a.ID))
	require.NoError(t, svc.Remove(ctx, a.ID), "removing an absent product succeeds")
	items, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ProductID)

	err = svc.Remove(asUser("stranger", models.RoleCustomer), a.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
