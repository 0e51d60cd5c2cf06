package http

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
)

// sanitizeInput trims whitespace and strips control characters except
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formatINR renders an amount as Indian rupees for display fields.
func formatINR(amount float64) string {
	paise := int64(math.Round(amount * 100))
	return money.New(paise, money.INR).Display()
}
