package http

import (
	"math"
	"strconv"
	"strings"

	"asicrev/internal/core"
)

// formatNumber renders v with a fixed number of decimals. NaN and infinities
// are shown as such rather than hidden.
func formatNumber(v float64, decimals int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// formatTotal uses cent precision for USD and satoshi precision for BTC.
func formatTotal(v float64, unit core.Unit) string {
	if unit == core.UnitBTC {
		return formatNumber(v, 8)
	}
	return formatNumber(v, 2)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
