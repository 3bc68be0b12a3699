package pricing

import (
	"github.com/shopspring/decimal"
)

// LineItem is the minimal cart line needed to price a checkout.
type LineItem struct {
	ProductID string
	VendorID  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// ShippingCatalog maps shipping option ids to their prices.
type ShippingCatalog map[string]decimal.Decimal

// Totals carries unrounded checkout money. Callers round at presentation only.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Rounded returns the totals at 2 decimal places for API responses.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(2),
		Shipping: t.Shipping.Round(2),
		Tax:      t.Tax.Round(2),
		Total:    t.Total.Round(2),
	}
}

// ComputeTotals prices the cart. It is pure and recomputed on every read.
//
// The tax rate is a flat percentage of the subtotal. It is a placeholder
// estimate, not a tax-authority computation. A selection referencing an
// unknown option id contributes 0 to shipping.
func ComputeTotals(items []LineItem, selection map[string]string, catalog ShippingCatalog, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))))
	}

	shipping := decimal.Zero
	for _, optionID := range selection {
		if price, ok := catalog[optionID]; ok {
			shipping = shipping.Add(price)
		}
	}

	tax := subtotal.Mul(taxRatePercent).Div(decimal.NewFromInt(100))

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
