package enums

import (
	"fmt"
	"strings"
)

// DiscountType selects how a coupon discount is computed.
type DiscountType string

const (
	DiscountTypeFlat       DiscountType = "FLAT"
	DiscountTypePercentage DiscountType = "PERCENTAGE"
)

var validDiscountTypes = []DiscountType{
	DiscountTypeFlat,
	DiscountTypePercentage,
}

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountType converts raw input into a DiscountType. Matching is case-insensitive.
func ParseDiscountType(value string) (DiscountType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validDiscountTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}
