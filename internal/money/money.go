// Package money rounds and formats baht amounts for API responses.
// The calculation engine works on unrounded float64s so conservation holds;
// rounding to satang happens here, at the presentation edge only.
package money

import (
	"fmt"
	"math"

	gomoney "github.com/Rhymond/go-money"
)

func fraction() int {
	if c := gomoney.GetCurrency(gomoney.THB); c != nil {
		return c.Fraction
	}
	return 2
}

// RoundTHB rounds a value to satang (2 decimal places). The minor-unit
// amount is rounded half away from zero before going through go-money,
// since NewFromFloat truncates.
func RoundTHB(value float64) float64 {
	factor := math.Pow10(fraction())
	minor := int64(math.Round(value * factor))
	return gomoney.New(minor, gomoney.THB).AsMajorUnits()
}

// FormatTHB renders a value with exactly 2 decimals, e.g. "125.50".
func FormatTHB(value float64) string {
	return fmt.Sprintf("%.*f", fraction(), RoundTHB(value))
}
