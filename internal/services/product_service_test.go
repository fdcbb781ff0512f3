package services_test

import (
	"context"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_Browse(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	electronics := testutil.Category(t, store, "Electronics", "electronics", "")
	testutil.Category(t, store, "Books", "books", "")

	phone := testutil.Product(t, store, "Phone", 600, 4, testutil.WithCategory(electronics), testutil.WithRatings(3, 4, 5))
	draft := testutil.Product(t, store, "Concept Phone", 900, 1, testutil.WithCategory(electronics), testutil.WithStatus(models.ProductStatusDraft))

	svc := services.NewProductService(store)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, phone.ID, products[0].ID)
	assert.InDelta(t, 4.0, products[0].AverageRating, 0.001)

	view, err := svc.GetProduct(ctx, phone.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.ReviewCount)

	_, err = svc.GetProduct(ctx, draft.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.GetProduct(asUser("root", models.RoleAdmin), draft.ID)
	assert.NoError(t, err, "admins see drafts")
	_, err = svc.GetProduct(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "books", categories[0].Slug)
	assert.Equal(t, int64(0), categories[0].ProductCount)
	assert.Equal(t, int64(1), categories[1].ProductCount)

	category, err := svc.GetCategory(ctx, "electronics")
	require.NoError(t, err)
	assert.Equal(t, electronics.ID, category.Category.ID)
	assert.Len(t, category.Products, 1)

	_, err = svc.GetCategory(ctx, "garden")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	all, err := svc.ListAdminProducts(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	drafts, err := svc.ListAdminProducts(ctx, models.ProductStatusDraft, "concept")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)
	_, err = svc.ListAdminProducts(ctx, "archived", "")
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	books := testutil.Category(t, store, "Books", "books", "")
	svc := services.NewProductService(store)

	compareAt := decimal.NewFromInt(20)
	product, err := svc.CreateProduct(ctx, services.CreateProductInput{
		Name:           "  Go in Practice ",
		Price:          decimal.NewFromInt(25),
		CompareAtPrice: &compareAt,
		Quantity:       7,
		Status:         models.ProductStatusActive,
		CategoryID:     &books.ID,
		ImageURLs:      []string{"https://img.example/cover.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Go in Practice", product.Name)

	stored := reloadProduct(t, store, product.ID)
	assert.Equal(t, 7, stored.Quantity)
	assert.Equal(t, "https://img.example/cover.jpg", stored.PrimaryImageURL())
	assert.True(t, stored.SalePrice().Equal(compareAt))

	history, err := svc.InventoryHistory(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.AdjustmentReasonRestock, history[0].Reason)
	assert.Equal(t, 7, history[0].Quantity)

	draft, err := svc.CreateProduct(ctx, services.CreateProductInput{Name: "Zine", Price: decimal.NewFromInt(3)})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusDraft, draft.Status)
	history, err = svc.InventoryHistory(ctx, draft.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = svc.CreateProduct(ctx, services.CreateProductInput{Name: "Free", Price: decimal.Zero})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	missing := "no-such-category"
	_, err = svc.CreateProduct(ctx, services.CreateProductInput{Name: "Orphan", Price: decimal.NewFromInt(1), CategoryID: &missing})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestProductService_StatusAndRestock(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	p := testutil.Product(t, store, "Kettle", 45, 1)
	svc := services.NewProductService(store)

	updated, err := svc.UpdateProductStatus(ctx, p.ID, models.ProductStatusOutOfStock)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOutOfStock, updated.Status)

	_, err = svc.UpdateProductStatus(ctx, p.ID, "gone")
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	_, err = svc.UpdateProductStatus(ctx, "missing", models.ProductStatusActive)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	restocked, err := svc.Restock(ctx, p.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 10, restocked.Quantity)

	_, err = svc.Restock(ctx, p.ID, 0)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	_, err = svc.Restock(ctx, "missing", 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	history, err := svc.InventoryHistory(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 9, history[0].Quantity)

	_, err = svc.InventoryHistory(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
