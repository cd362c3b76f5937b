package enums

import (
	"fmt"
	"strings"
)

// NotificationKind names the events handed to the email collaborator.
type NotificationKind string

const (
	NotificationKindOrderConfirmed NotificationKind = "ORDER_CONFIRMED"
	NotificationKindLowStock       NotificationKind = "LOW_STOCK"
	NotificationKindPaymentFailed  NotificationKind = "PAYMENT_FAILED"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindOrderConfirmed,
	NotificationKindLowStock,
	NotificationKindPaymentFailed,
}

// String implements fmt.Stringer.
func (n NotificationKind) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationKind.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into a NotificationKind. Matching is case-insensitive.
func ParseNotificationKind(value string) (NotificationKind, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validNotificationKinds {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
