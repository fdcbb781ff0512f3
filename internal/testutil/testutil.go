// Package testutil builds isolated in-memory stores and catalog fixtures
// for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite in-memory database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open(database.Options{
		Driver:   database.DriverSQLite,
		DSN:      dsn,
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// NewStore returns a GORMStore over a fresh database.
func NewStore(t testing.TB) *repositories.GORMStore {
	t.Helper()
	return repositories.NewGORMStore(NewDB(t))
}

// Category creates a category.
func Category(t testing.TB, store repositories.Store, name, slug, description string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: slug, Description: description}
	require.NoError(t, store.Categories().Create(context.Background(), c))
	return c
}

// ProductOption customizes a product fixture.
type ProductOption func(*models.Product)

func WithCategory(c *models.Category) ProductOption {
	return func(p *models.Product) { p.CategoryID = &c.ID }
}

func WithStatus(s models.ProductStatus) ProductOption {
	return func(p *models.Product) { p.Status = s }
}

func WithCompareAt(price int64) ProductOption {
	return func(p *models.Product) {
		p.CompareAtPrice = decimal.NewNullDecimal(decimal.NewFromInt(price))
	}
}

func WithDescription(d string) ProductOption {
	return func(p *models.Product) { p.Description = d }
}

func WithRatings(ratings ...int) ProductOption {
	return func(p *models.Product) {
		for _, r := range ratings {
			p.Reviews = append(p.Reviews, models.Review{Rating: r, Content: "fixture"})
		}
	}
}

func WithImage(url string) ProductOption {
	return func(p *models.Product) {
		p.Images = append(p.Images, models.ProductImage{URL: url, Alt: p.Name, Position: len(p.Images)})
	}
}

// Product creates an active product with the given price and stock.
func Product(t testing.TB, store repositories.Store, name string, price int64, quantity int, opts ...ProductOption) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.NewFromInt(price),
		Quantity:    quantity,
		Status:      models.ProductStatusActive,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

// User creates a user with a bcrypt-hashed password, bypassing
// registration so that any role can be set.
func User(t testing.TB, store repositories.Store, username, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Name:     username,
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}
