package enums

import (
	"fmt"
	"strings"
)

// DeliveryChargeType selects how the delivery charge applies.
type DeliveryChargeType string

const (
	DeliveryChargeTypeFlat        DeliveryChargeType = "FLAT"
	DeliveryChargeTypeConditional DeliveryChargeType = "CONDITIONAL"
)

var validDeliveryChargeTypes = []DeliveryChargeType{
	DeliveryChargeTypeFlat,
	DeliveryChargeTypeConditional,
}

// String implements fmt.Stringer.
func (d DeliveryChargeType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryChargeType.
func (d DeliveryChargeType) IsValid() bool {
	for _, candidate := range validDeliveryChargeTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryChargeType converts raw input into a DeliveryChargeType. Matching is case-insensitive.
func ParseDeliveryChargeType(value string) (DeliveryChargeType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validDeliveryChargeTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery charge type %q", value)
}
