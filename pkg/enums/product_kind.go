package enums

import (
	"fmt"
	"strings"
)

// ProductKind separates the sellable catalog entities.
type ProductKind string

const (
	ProductKindPlant  ProductKind = "PLANT"
	ProductKindPot    ProductKind = "POT"
	ProductKindCombo  ProductKind = "COMBO"
	ProductKindHamper ProductKind = "HAMPER"
)

var validProductKinds = []ProductKind{
	ProductKindPlant,
	ProductKindPot,
	ProductKindCombo,
	ProductKindHamper,
}

// String implements fmt.Stringer.
func (p ProductKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductKind.
func (p ProductKind) IsValid() bool {
	for _, candidate := range validProductKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductKind converts raw input into a ProductKind. Matching is case-insensitive.
func ParseProductKind(value string) (ProductKind, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validProductKinds {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product kind %q", value)
}
