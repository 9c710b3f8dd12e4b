// Package utils provides small formatting helpers shared by the chart packages.
package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatCoord formats a coordinate with at most three decimals and no
// trailing zeros, e.g. 30 → "30", 12.5 → "12.5", 1/3 → "0.333".
func FormatCoord(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	v = math.Round(v*1000) / 1000
	if v == 0 {
		// avoid "-0"
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ToFixed scales v by scale and rounds to the nearest integer. Used to carry
// sub-pixel precision through integer-only drawing APIs.
func ToFixed(v float64, scale int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v * float64(scale)))
}
