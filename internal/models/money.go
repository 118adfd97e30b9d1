package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// centsExp is the decimal exponent of a minor currency unit.
const centsExp = -2

// CentsToDecimal returns cents as a major-unit decimal (1234 -> 12.34).
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, centsExp)
}

// CentsFromDecimal converts a major-unit amount to cents, rounding half away
// from zero to the nearest cent.
func CentsFromDecimal(amount decimal.Decimal) int64 {
	return amount.Shift(-centsExp).Round(0).IntPart()
}

// FormatCents renders cents with two decimal places and an optional currency
// code ("12.34 AUD").
func FormatCents(cents int64, currency string) string {
	s := CentsToDecimal(cents).StringFixed(2)
	if currency == "" {
		return s
	}
	return fmt.Sprintf("%s %s", s, currency)
}

// ParseCents parses a human or bank-export amount ("1'234,50", "$-12.00",
// "EUR 3.5") into cents.
func ParseCents(raw string) (int64, error) {
	amount := strings.TrimSpace(raw)
	for _, sym := range []string{"AUD", "CHF", "EUR", "USD", "GBP", "$", "€", "£", " ", "'"} {
		amount = strings.ReplaceAll(amount, sym, "")
	}
	// A comma followed by exactly two digits at the end is a decimal comma.
	if i := strings.LastIndex(amount, ","); i >= 0 && len(amount)-i == 3 && !strings.Contains(amount, ".") {
		amount = amount[:i] + "." + amount[i+1:]
	}
	amount = strings.ReplaceAll(amount, ",", "")

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return CentsFromDecimal(dec), nil
}
