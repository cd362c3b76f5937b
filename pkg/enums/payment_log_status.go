package enums

import (
	"fmt"
	"strings"
)

// PaymentLogStatus is the outcome recorded on a payment audit row.
type PaymentLogStatus string

const (
	PaymentLogStatusSuccess PaymentLogStatus = "SUCCESS"
	PaymentLogStatusFailed  PaymentLogStatus = "FAILED"
	PaymentLogStatusPending PaymentLogStatus = "PENDING"
	PaymentLogStatusInfo    PaymentLogStatus = "INFO"
)

var validPaymentLogStatuses = []PaymentLogStatus{
	PaymentLogStatusSuccess,
	PaymentLogStatusFailed,
	PaymentLogStatusPending,
	PaymentLogStatusInfo,
}

// String implements fmt.Stringer.
func (p PaymentLogStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentLogStatus.
func (p PaymentLogStatus) IsValid() bool {
	for _, candidate := range validPaymentLogStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentLogStatus converts raw input into a PaymentLogStatus. Matching is case-insensitive.
func ParsePaymentLogStatus(value string) (PaymentLogStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPaymentLogStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment log status %q", value)
}
