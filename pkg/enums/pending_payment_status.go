package enums

import (
	"fmt"
	"strings"
)

// PendingPaymentStatus tracks a checkout attempt staged before the gateway redirect.
type PendingPaymentStatus string

const (
	PendingPaymentStatusPending PendingPaymentStatus = "PENDING"
	PendingPaymentStatusSuccess PendingPaymentStatus = "SUCCESS"
	PendingPaymentStatusFailed  PendingPaymentStatus = "FAILED"
)

var validPendingPaymentStatuses = []PendingPaymentStatus{
	PendingPaymentStatusPending,
	PendingPaymentStatusSuccess,
	PendingPaymentStatusFailed,
}

// String implements fmt.Stringer.
func (p PendingPaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PendingPaymentStatus.
func (p PendingPaymentStatus) IsValid() bool {
	for _, candidate := range validPendingPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePendingPaymentStatus converts raw input into a PendingPaymentStatus. Matching is case-insensitive.
func ParsePendingPaymentStatus(value string) (PendingPaymentStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPendingPaymentStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pending payment status %q", value)
}

// IsTerminal reports whether no further transitions are permitted.
func (p PendingPaymentStatus) IsTerminal() bool {
	return p == PendingPaymentStatusSuccess || p == PendingPaymentStatusFailed
}
