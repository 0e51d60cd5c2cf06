// Package core provides amount parsing and handling utilities.
//
// Amounts are stored as plain float64 values; the currency symbol is a
// presentation concern and never reaches storage.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a float64 amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// The value is stored as supplied; no sign or range check is applied here,
// validation of positivity is a hardening concern left to the HTTP edge.
//
// Examples:
//
//	ParseAmount("45.50") -> 45.5, nil
//	ParseAmount("45,50") -> 45.5, nil
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	return f, nil
}
