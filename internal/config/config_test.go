package config_test

import (
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "ecommerce-demo-cart", cfg.DemoCartKey)
	assert.Equal(t, "INR", cfg.Pricing.Currency)
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.08")))
	assert.True(t, cfg.Pricing.FreeShippingThreshold.Equal(decimal.NewFromInt(1000)))
	assert.True(t, cfg.Pricing.FlatShippingFee.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, time.Second, cfg.Payment.Delay)
	assert.Equal(t, 5*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, 3, cfg.Payment.MaxAttempts)
}

func TestLoadOverrides(t *testing.T) {
	v := newViper()
	v.Set("TAX_RATE", "0.18")
	v.Set("DB_DRIVER", "SQLite")
	v.Set("PAYMENT_TIMEOUT", "250ms")

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.18")))
	assert.Equal(t, 250*time.Millisecond, cfg.Payment.Timeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"TAX_RATE":             "1.5",
		"FLAT_SHIPPING_FEE":    "-1",
		"PAYMENT_MAX_ATTEMPTS": "0",
		"CURRENCY":             "RUPEE",
		"PAYMENT_TIMEOUT":      "0s",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			v := newViper()
			v.Set(key, value)
			_, err := config.Load(v)
			assert.Error(t, err)
		})
	}

	v := newViper()
	v.Set("TAX_RATE", "eight percent")
	_, err := config.Load(v)
	assert.ErrorContains(t, err, "invalid TAX_RATE")
}
