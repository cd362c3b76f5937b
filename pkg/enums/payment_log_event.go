package enums

import (
	"fmt"
	"strings"
)

// PaymentLogEvent classifies payment audit rows.
type PaymentLogEvent string

const (
	PaymentLogEventCreated          PaymentLogEvent = "CREATED"
	PaymentLogEventWebhookReceived  PaymentLogEvent = "WEBHOOK_RECEIVED"
	PaymentLogEventCallbackReceived PaymentLogEvent = "CALLBACK_RECEIVED"
	PaymentLogEventCanceled         PaymentLogEvent = "CANCELED"
	PaymentLogEventFinalized        PaymentLogEvent = "FINALIZED"
	PaymentLogEventFailed           PaymentLogEvent = "FAILED"
	PaymentLogEventTimeout          PaymentLogEvent = "TIMEOUT"
	PaymentLogEventIgnored          PaymentLogEvent = "IGNORED"
	PaymentLogEventRepaired         PaymentLogEvent = "REPAIRED"
	PaymentLogEventExpired          PaymentLogEvent = "EXPIRED"
)

var validPaymentLogEvents = []PaymentLogEvent{
	PaymentLogEventCreated,
	PaymentLogEventWebhookReceived,
	PaymentLogEventCallbackReceived,
	PaymentLogEventCanceled,
	PaymentLogEventFinalized,
	PaymentLogEventFailed,
	PaymentLogEventTimeout,
	PaymentLogEventIgnored,
	PaymentLogEventRepaired,
	PaymentLogEventExpired,
}

// String implements fmt.Stringer.
func (p PaymentLogEvent) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentLogEvent.
func (p PaymentLogEvent) IsValid() bool {
	for _, candidate := range validPaymentLogEvents {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentLogEvent converts raw input into a PaymentLogEvent. Matching is case-insensitive.
func ParsePaymentLogEvent(value string) (PaymentLogEvent, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPaymentLogEvents {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment log event %q", value)
}
