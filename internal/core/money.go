// Package core provides money parsing and rounding utilities.
//
// Amounts are stored as float64 in SQLite (REAL columns); every value that leaves
// the aggregation layer is rounded to two decimals, half away from zero, which
// matches SQLite's ROUND().
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string into a non-negative amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. An empty
// string is treated as zero. Signed, non-numeric or non-finite input is rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("")      -> 0, nil
//	ParseAmount("-5")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f := d.InexactFloat64()
	if !validMoney(f) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// Round2 rounds v to two decimal places, half away from zero.
// Non-finite values are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	if r == 0 {
		// normalise -0
		return 0
	}
	return r
}

func validMoney(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
