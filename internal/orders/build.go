package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
)

// NewFromSnapshot builds an unsaved order, with denormalized items, from a
// priced cart snapshot.
func NewFromSnapshot(userID uuid.UUID, cart models.CartSnapshot, method enums.PaymentMethod, status enums.OrderStatus, now time.Time) *models.Order {
	ship := cart.Shipping
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   NewOrderNumber(now),
		UserID:        userID,
		CustomerName:  ship.CustomerName,
		Mobile:        ship.Mobile,
		Email:         optional(ship.Email),
		AddressLine1:  ship.AddressLine1,
		AddressLine2:  optional(ship.AddressLine2),
		City:          ship.City,
		State:         ship.State,
		Pincode:       ship.Pincode,
		SubtotalPaise: cart.SubtotalPaise,
		DiscountPaise: cart.DiscountPaise,
		DeliveryPaise: cart.DeliveryPaise,
		TotalPaise:    cart.TotalPaise,
		CouponCode:    optional(cart.CouponCode),
		Status:        status,
		PaymentMethod: method,
		Items:         make([]models.OrderItem, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:      item.ProductID,
			SizeID:         item.SizeID,
			Name:           item.Name,
			SizeLabel:      optional(item.SizeLabel),
			UnitPricePaise: item.UnitPricePaise,
			Quantity:       item.Quantity,
			ImageURL:       optional(item.ImageURL),
		})
	}
	return order
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
