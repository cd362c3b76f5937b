// Package notifications emits fire-and-forget order and inventory events to
// the email collaborator.
package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
)

// Event is the message published for one notification.
type Event struct {
	ID             uuid.UUID              `json:"id"`
	Kind           enums.NotificationKind `json:"kind"`
	OccurredAt     time.Time              `json:"occurred_at"`
	Recipient      string                 `json:"recipient,omitempty"`
	OrderID        *uuid.UUID             `json:"order_id,omitempty"`
	OrderNumber    string                 `json:"order_number,omitempty"`
	GatewayOrderID string                 `json:"gateway_order_id,omitempty"`
	CustomerName   string                 `json:"customer_name,omitempty"`
	TotalPaise     int64                  `json:"total_paise,omitempty"`
	Items          []EventItem            `json:"items,omitempty"`
	ProductID      *uuid.UUID             `json:"product_id,omitempty"`
	SizeID         *uuid.UUID             `json:"size_id,omitempty"`
	ProductName    string                 `json:"product_name,omitempty"`
	RemainingStock *int                   `json:"remaining_stock,omitempty"`
	Reason         string                 `json:"reason,omitempty"`
}

type EventItem struct {
	Name           string `json:"name"`
	SizeLabel      string `json:"size_label,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPricePaise int64  `json:"unit_price_paise"`
}

// OrderConfirmed is sent to the customer once an order is durable.
func OrderConfirmed(order *models.Order) Event {
	id := order.ID
	ev := Event{
		ID:           uuid.New(),
		Kind:         enums.NotificationKindOrderConfirmed,
		OccurredAt:   time.Now().UTC(),
		OrderID:      &id,
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		TotalPaise:   order.TotalPaise,
	}
	if order.Email != nil {
		ev.Recipient = *order.Email
	}
	if order.GatewayOrderID != nil {
		ev.GatewayOrderID = *order.GatewayOrderID
	}
	for _, item := range order.Items {
		label := ""
		if item.SizeLabel != nil {
			label = *item.SizeLabel
		}
		ev.Items = append(ev.Items, EventItem{
			Name:           item.Name,
			SizeLabel:      label,
			Quantity:       item.Quantity,
			UnitPricePaise: item.UnitPricePaise,
		})
	}
	return ev
}

// LowStock is sent to the admin mailbox when an item drops to its threshold.
func LowStock(adminEmail string, productID uuid.UUID, sizeID *uuid.UUID, name string, remaining int) Event {
	pid := productID
	return Event{
		ID:             uuid.New(),
		Kind:           enums.NotificationKindLowStock,
		OccurredAt:     time.Now().UTC(),
		Recipient:      adminEmail,
		ProductID:      &pid,
		SizeID:         sizeID,
		ProductName:    name,
		RemainingStock: &remaining,
	}
}

// PaymentFailed tells the customer a captured payment could not become an
// order, so support can refund it.
func PaymentFailed(recipient, gatewayOrderID, customerName string, amountPaise int64, reason string) Event {
	return Event{
		ID:             uuid.New(),
		Kind:           enums.NotificationKindPaymentFailed,
		OccurredAt:     time.Now().UTC(),
		Recipient:      recipient,
		GatewayOrderID: gatewayOrderID,
		CustomerName:   customerName,
		TotalPaise:     amountPaise,
		Reason:         reason,
	}
}
