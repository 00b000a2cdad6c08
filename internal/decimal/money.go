package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// LineAmount computes unitPrice * quantity without rounding
func LineAmount(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Percentage computes percent * amount / 100 without rounding so that
// totals derived from it add up exactly.
func Percentage(amount, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return Zero
	}
	return percent.Mul(amount).Div(hundred)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// Fixed2 formats with exactly two decimals, rounding half away from zero
func Fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// WholeOrFixed2 prints whole amounts without decimals and everything else
// with two, the way the preview prints the grand total.
func WholeOrFixed2(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.Truncate(0).String()
	}
	return d.StringFixed(2)
}
