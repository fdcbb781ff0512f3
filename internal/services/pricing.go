package services

import (
	"storefront/internal/config"

	"github.com/shopspring/decimal"
)

// Totals are the monetary fields of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals applies the tax and shipping rules to subtotal. Tax is
// rounded to a whole currency unit; shipping is free strictly above the
// threshold. No discounts are applied.
func ComputeTotals(rules config.PricingConfig, subtotal decimal.Decimal) Totals {
	t := Totals{
		Subtotal: subtotal,
		Tax:      subtotal.Mul(rules.TaxRate).Round(0),
		Shipping: rules.FlatShippingFee,
		Discount: decimal.Zero,
	}
	if subtotal.GreaterThan(rules.FreeShippingThreshold) {
		t.Shipping = decimal.Zero
	}
	t.Total = t.Subtotal.Add(t.Tax).Add(t.Shipping).Sub(t.Discount)
	return t
}
