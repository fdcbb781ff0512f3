// Package config loads runtime settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds the storefront settings.
type Config struct {
	AppPort     string
	DBDriver    string
	DatabaseDSN string
	JWTSecret   string
	RabbitMQURL string
	RedisAddr   string
	LogLevel    string

	SendGridAPIKey string
	MailFrom       string

	DemoCartKey    string
	TracingEnabled bool

	Pricing PricingConfig
	Payment PaymentConfig
}

// PricingConfig are the order total rules applied at checkout.
type PricingConfig struct {
	Currency              string
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// PaymentConfig bounds the payment gateway round trip.
type PaymentConfig struct {
	Delay        time.Duration
	Timeout      time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=storefront port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "orders@storefront.local")
	v.SetDefault("DEMO_CART_KEY", "ecommerce-demo-cart")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("TAX_RATE", "0.08")
	v.SetDefault("FREE_SHIPPING_THRESHOLD", "1000")
	v.SetDefault("FLAT_SHIPPING_FEE", "100")
	v.SetDefault("PAYMENT_DELAY", "1s")
	v.SetDefault("PAYMENT_TIMEOUT", "5s")
	v.SetDefault("PAYMENT_MAX_ATTEMPTS", 3)
	v.SetDefault("PAYMENT_RETRY_BACKOFF", "200ms")
}

// LoadEnvFile loads variables from .env files into the process
// environment. Missing files are not an error.
func LoadEnvFile(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// Load reads the configuration from v, which must have defaults set and
// the environment bound.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),
		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		MailFrom:       v.GetString("MAIL_FROM"),
		DemoCartKey:    v.GetString("DEMO_CART_KEY"),
		TracingEnabled: v.GetBool("TRACING_ENABLED"),
		Payment: PaymentConfig{
			Delay:        v.GetDuration("PAYMENT_DELAY"),
			Timeout:      v.GetDuration("PAYMENT_TIMEOUT"),
			MaxAttempts:  v.GetInt("PAYMENT_MAX_ATTEMPTS"),
			RetryBackoff: v.GetDuration("PAYMENT_RETRY_BACKOFF"),
		},
	}

	var err error
	cfg.Pricing.Currency = strings.ToUpper(v.GetString("CURRENCY"))
	if cfg.Pricing.TaxRate, err = decimalKey(v, "TAX_RATE"); err != nil {
		return nil, err
	}
	if cfg.Pricing.FreeShippingThreshold, err = decimalKey(v, "FREE_SHIPPING_THRESHOLD"); err != nil {
		return nil, err
	}
	if cfg.Pricing.FlatShippingFee, err = decimalKey(v, "FLAT_SHIPPING_FEE"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.TaxRateOutOfRange() {
		return fmt.Errorf("TAX_RATE must be in [0, 1), got %s", c.Pricing.TaxRate)
	}
	if c.Pricing.FlatShippingFee.IsNegative() || c.Pricing.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("shipping amounts must not be negative")
	}
	if len(c.Pricing.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be an ISO 4217 code, got %q", c.Pricing.Currency)
	}
	if c.Payment.Timeout <= 0 {
		return fmt.Errorf("PAYMENT_TIMEOUT must be positive")
	}
	if c.Payment.MaxAttempts < 1 {
		return fmt.Errorf("PAYMENT_MAX_ATTEMPTS must be at least 1")
	}
	if c.DemoCartKey == "" {
		return fmt.Errorf("DEMO_CART_KEY must not be empty")
	}
	return nil
}

func (c *Config) TaxRateOutOfRange() bool {
	return c.Pricing.TaxRate.IsNegative() || c.Pricing.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1))
}

func decimalKey(v *viper.Viper, key string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.GetString(key))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
