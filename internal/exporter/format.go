package exporter

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// formatFloat formats a value with a fixed number of decimals. Null (NaN)
// values are written as empty cells.
func formatFloat(f float64, places int32) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return decimal.NewFromFloat(f).StringFixed(places)
}

// formatInt formats an integer count
func formatInt(i int) string {
	return strconv.Itoa(i)
}
