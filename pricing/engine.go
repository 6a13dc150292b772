package pricing

import (
	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the number of decimal places carried by every money
// value (invoices are emitted with two decimals).
const CurrencyPrecision = 2

var oneHundred = decimal.NewFromInt(100)

// ClampDiscount validates an administrator-entered discount percentage.
// Out-of-range values are treated as 0 rather than erroring so that bad
// catalog data can never break a checkout.
func ClampDiscount(discountPercent int) int {
	if discountPercent < 0 || discountPercent > 100 {
		return 0
	}
	return discountPercent
}

// FinalPrice computes cost × (1 − discount/100) in fixed-point decimal
// arithmetic, rounded to currency precision. Repeated invocations are exact;
// no floating point is involved at any step.
func FinalPrice(cost decimal.Decimal, discountPercent int) decimal.Decimal {
	discountPercent = ClampDiscount(discountPercent)
	if discountPercent == 0 {
		return cost.Round(CurrencyPrecision)
	}

	factor := oneHundred.Sub(decimal.NewFromInt(int64(discountPercent))).Div(oneHundred)
	return cost.Mul(factor).Round(CurrencyPrecision)
}

// LineSubtotal is the exact product unitPrice × quantity. The unit price is
// already rounded to currency precision, so the subtotal needs no rounding.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Total sums line subtotals. Order totals are always built this way, never
// recomputed from product costs, so per-line rounding stays stable and
// auditable.
func Total(subtotals []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, subtotal := range subtotals {
		total = total.Add(subtotal)
	}
	return total
}

// DiscountAmount is the per-unit saving for a discounted product, used in
// order summaries ("antes $X").
func DiscountAmount(cost decimal.Decimal, discountPercent int) decimal.Decimal {
	return cost.Round(CurrencyPrecision).Sub(FinalPrice(cost, discountPercent))
}
