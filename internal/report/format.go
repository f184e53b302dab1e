package report

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatNumber renders v with a fixed number of decimal places. NaN and
// infinities are spelled out.
func FormatNumber(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// FormatCount renders an integer count
func FormatCount(n int) string {
	return strconv.Itoa(n)
}
