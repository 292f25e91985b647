package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds v half away from zero to the given number of decimal places.
// Rounding works on the shortest decimal form of v, so 1.005 rounds to 1.01.
// NaN and infinities collapse to 0.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(int32(places)).InexactFloat64()
}

// SafeDiv returns num/den, or 0 when den is 0.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percent returns 100*part/whole, or 0 when whole is 0.
func Percent(part, whole float64) float64 {
	return SafeDiv(part*100, whole)
}
