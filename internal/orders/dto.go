package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/money"
	"github.com/leafcart/nursery-backend/pkg/pagination"
)

// Filter narrows order listings. UserID scopes a customer's own history;
// admin listings leave it nil.
type Filter struct {
	UserID        *uuid.UUID
	Status        *enums.OrderStatus
	PaymentMethod *enums.PaymentMethod
	Search        string
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
	Cursor        *pagination.Cursor
}

// Summary is one row of an order list.
type Summary struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerName  string              `json:"customer_name"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	TotalPaise    int64               `json:"total_paise"`
	Total         string              `json:"total"`
	TotalItems    int                 `json:"total_items"`
	CreatedAt     time.Time           `json:"created_at"`
}

type SummaryList struct {
	Orders     []Summary `json:"orders"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

type ItemView struct {
	ProductID      uuid.UUID  `json:"product_id"`
	SizeID         *uuid.UUID `json:"size_id,omitempty"`
	Name           string     `json:"name"`
	SizeLabel      *string    `json:"size_label,omitempty"`
	UnitPricePaise int64      `json:"unit_price_paise"`
	Quantity       int        `json:"quantity"`
	ImageURL       *string    `json:"image_url,omitempty"`
}

type PaymentView struct {
	Provider         string                   `json:"provider"`
	GatewayOrderID   string                   `json:"gateway_order_id"`
	GatewayPaymentID string                   `json:"gateway_payment_id"`
	Method           *string                  `json:"method,omitempty"`
	AmountPaise      int64                    `json:"amount_paise"`
	Status           string                   `json:"status"`
	Source           enums.FinalizationSource `json:"source"`
	CapturedAt       time.Time                `json:"captured_at"`
}

// Detail is the full order as shown to its owner or an admin.
type Detail struct {
	Summary
	Mobile        string       `json:"mobile"`
	Email         *string      `json:"email,omitempty"`
	AddressLine1  string       `json:"address_line1"`
	AddressLine2  *string      `json:"address_line2,omitempty"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	Pincode       string       `json:"pincode"`
	SubtotalPaise int64        `json:"subtotal_paise"`
	DiscountPaise int64        `json:"discount_paise"`
	DeliveryPaise int64        `json:"delivery_paise"`
	CouponCode    *string      `json:"coupon_code,omitempty"`
	Items         []ItemView   `json:"items"`
	Payment       *PaymentView `json:"payment,omitempty"`
}

func summaryOf(o models.Order) Summary {
	items := 0
	for _, item := range o.Items {
		items += item.Quantity
	}
	return Summary{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		TotalPaise:    o.TotalPaise,
		Total:         money.Format(o.TotalPaise),
		TotalItems:    items,
		CreatedAt:     o.CreatedAt,
	}
}

// DetailOf maps a loaded order, with items and payment preloaded, to its view.
func DetailOf(o models.Order) Detail {
	d := Detail{
		Summary:       summaryOf(o),
		Mobile:        o.Mobile,
		Email:         o.Email,
		AddressLine1:  o.AddressLine1,
		AddressLine2:  o.AddressLine2,
		City:          o.City,
		State:         o.State,
		Pincode:       o.Pincode,
		SubtotalPaise: o.SubtotalPaise,
		DiscountPaise: o.DiscountPaise,
		DeliveryPaise: o.DeliveryPaise,
		CouponCode:    o.CouponCode,
		Items:         make([]ItemView, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		d.Items = append(d.Items, ItemView{
			ProductID:      item.ProductID,
			SizeID:         item.SizeID,
			Name:           item.Name,
			SizeLabel:      item.SizeLabel,
			UnitPricePaise: item.UnitPricePaise,
			Quantity:       item.Quantity,
			ImageURL:       item.ImageURL,
		})
	}
	if p := o.Payment; p != nil {
		d.Payment = &PaymentView{
			Provider:         p.Provider,
			GatewayOrderID:   p.GatewayOrderID,
			GatewayPaymentID: p.GatewayPaymentID,
			Method:           p.Method,
			AmountPaise:      p.AmountPaise,
			Status:           p.Status,
			Source:           p.Source,
			CapturedAt:       p.CapturedAt,
		}
	}
	return d
}
