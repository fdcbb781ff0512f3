package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/idempotency"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useSQLite points the commands at a fresh SQLite file.
func useSQLite(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "storefront.db")
	t.Setenv("DATABASE_DSN", dsn)
	t.Setenv("PAYMENT_DELAY", "0s")
	return dsn
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db-driver", "sqlite", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func openStore(t *testing.T, dsn string) *repositories.GORMStore {
	t.Helper()
	db, err := database.Open(database.Options{Driver: database.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return repositories.NewGORMStore(db)
}

func TestMigrateAndSeed(t *testing.T) {
	dsn := useSQLite(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 15 products")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 0 products")

	store := openStore(t, dsn)
	ctx := context.Background()
	products, err := store.Products().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 15, products)

	categories, err := store.Categories().Summaries(ctx, false)
	require.NoError(t, err)
	require.Len(t, categories, 4)

	admin, err := store.Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestReconcileSettlesPendingOrders(t *testing.T) {
	dsn := useSQLite(t)
	_, err := run(t, "migrate")
	require.NoError(t, err)

	store := openStore(t, dsn)
	order := &models.Order{
		OrderNumber:    "ORD-1-ABCDEF01",
		Status:         models.OrderStatusProcessing,
		PaymentStatus:  models.PaymentStatusPending,
		Subtotal:       decimal.NewFromInt(100),
		TaxAmount:      decimal.NewFromInt(8),
		ShippingAmount: decimal.NewFromInt(100),
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.NewFromInt(208),
		Currency:       "INR",
		PaymentMethod:  "card",
		Items:          []models.OrderItem{{Name: "Mug", Price: decimal.NewFromInt(100), Quantity: 1}},
	}
	require.NoError(t, store.Orders().Create(context.Background(), order))

	out, err := run(t, "reconcile")
	require.NoError(t, err)

	var report struct {
		Checked   int `json:"checked"`
		Confirmed int `json:"confirmed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Confirmed)

	settled, err := store.Orders().GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, settled.PaymentStatus)
}

func TestInvalidConfigurationFailsBeforeRunning(t *testing.T) {
	useSQLite(t)
	t.Setenv("TAX_RATE", "1.5")

	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TAX_RATE")
}

func TestLogLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.LevelDebug,
		"WARN":    log.LevelWarn,
		"warning": log.LevelWarn,
		"error":   log.LevelError,
		"info":    log.LevelInfo,
		"":        log.LevelInfo,
	}
	for name, want := range tests {
		assert.Equal(t, want, logLevel(name), name)
	}
}

func TestNewIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := newIdempotencyStore(ctx, "")
	require.NoError(t, err)
	closeFn()
	assert.IsType(t, &idempotency.MemoryStore{}, store)

	mr, err := miniredis.Run()
	require.NoError(t, err)

	store, closeFn, err = newIdempotencyStore(ctx, mr.Addr())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &idempotency.RedisStore{}, store)

	addr := mr.Addr()
	mr.Close()
	_, _, err = newIdempotencyStore(ctx, addr)
	assert.Error(t, err)
}

func TestNewMailer(t *testing.T) {
	assert.IsType(t, notify.LogMailer{}, newMailer(&config.Config{}))
	assert.IsType(t, &notify.SendGridMailer{}, newMailer(&config.Config{SendGridAPIKey: "SG.test", MailFrom: "orders@example.com"}))
}
