// Package money converts between rupee amounts and the integer paise stored
// everywhere else in the system.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const paisePerRupee = 100

var hundred = decimal.NewFromInt(paisePerRupee)

// FromRupees converts a rupee amount to paise, rounding to the nearest paisa.
func FromRupees(rupees decimal.Decimal) int64 {
	return rupees.Mul(hundred).Round(0).IntPart()
}

// ParseRupees parses a decimal rupee string such as "1080" or "99.50".
func ParseRupees(value string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid rupee amount %q: %w", value, err)
	}
	return FromRupees(d), nil
}

// ToRupees converts paise to an exact rupee decimal.
func ToRupees(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}

// Format renders paise as a two-decimal rupee string.
func Format(paise int64) string {
	return ToRupees(paise).StringFixed(2)
}

// Percentage returns pct percent of amount, rounded down to the paisa.
func Percentage(amount int64, pct decimal.Decimal) int64 {
	if amount <= 0 || !pct.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(pct).Div(hundred).Floor().IntPart()
}

// WithinTolerance reports whether |a-b| <= tolerance.
func WithinTolerance(a, b, tolerance int64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
