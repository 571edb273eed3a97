package export

import (
	"math"

	"github.com/shopspring/decimal"
)

// Missing is rendered for undefined values such as the expected return at a zero offer.
const Missing = "—"

// Fixed2 renders v with exactly two decimals, rounding half away from zero.
func Fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Fixed2Ptr renders nil as Missing.
func Fixed2Ptr(v *float64) string {
	if v == nil {
		return Missing
	}
	return Fixed2(*v)
}

// Percent renders a [0, 1] fraction as a two-decimal percentage.
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2)
}
