package razorpay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Webhook event names handled by the storefront.
const (
	EventPaymentCaptured   = "payment.captured"
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentFailed     = "payment.failed"
	EventOrderPaid         = "order.paid"
)

// WebhookEvent is the envelope of a gateway webhook delivery.
type WebhookEvent struct {
	Entity    string         `json:"entity"`
	AccountID string         `json:"account_id"`
	Event     string         `json:"event"`
	Contains  []string       `json:"contains"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

type WebhookPayload struct {
	Payment *struct {
		Entity Payment `json:"entity"`
	} `json:"payment,omitempty"`
	Order *struct {
		Entity Order `json:"entity"`
	} `json:"order,omitempty"`
}

// ParseWebhookEvent decodes a webhook body. Callers must verify the signature
// over the same raw bytes first.
func ParseWebhookEvent(rawBody []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	if strings.TrimSpace(event.Event) == "" {
		return nil, fmt.Errorf("webhook event name missing")
	}
	return &event, nil
}

// PaymentEntity returns the embedded payment, if any.
func (e *WebhookEvent) PaymentEntity() *Payment {
	if e == nil || e.Payload.Payment == nil {
		return nil
	}
	return &e.Payload.Payment.Entity
}

// GatewayOrderID returns the order id the event refers to.
func (e *WebhookEvent) GatewayOrderID() string {
	if e == nil {
		return ""
	}
	if p := e.PaymentEntity(); p != nil && p.OrderID != "" {
		return p.OrderID
	}
	if e.Payload.Order != nil {
		return e.Payload.Order.Entity.ID
	}
	return ""
}

// IsSuccess reports whether the event confirms captured funds.
func (e *WebhookEvent) IsSuccess() bool {
	if e == nil {
		return false
	}
	return e.Event == EventPaymentCaptured || e.Event == EventOrderPaid
}
