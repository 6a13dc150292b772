package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCOP formats a money amount as a string like "$12.500".
// Uses dot as thousands separator (common in Colombia); decimals are only
// shown when the amount has a fractional part.
func FormatCOP(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	intPart := amount.Truncate(0)
	fracPart := amount.Sub(intPart)

	s := intPart.String()

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + "$"
	b.Grow(len(s) + len(s)/3 + 5)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	if len(s) <= 3 {
		b.WriteString(s)
	} else {
		// Insert separators from the left.
		rem := len(s) % 3
		if rem == 0 {
			rem = 3
		}
		b.WriteString(s[:rem])
		for i := rem; i < len(s); i += 3 {
			b.WriteByte('.')
			b.WriteString(s[i : i+3])
		}
	}

	if !fracPart.IsZero() {
		// StringFixed(2) of the fraction looks like "0.50"; keep ",50".
		b.WriteByte(',')
		b.WriteString(fracPart.StringFixed(2)[2:])
	}

	return b.String()
}
