package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/enums"
)

// Order is the durable record of a purchase. GatewayOrderID is unique so a
// second finalization of the same gateway order fails at insert time.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber      string              `gorm:"column:order_number;not null;uniqueIndex:ux_orders_order_number"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	GatewayOrderID   *string             `gorm:"column:gateway_order_id;uniqueIndex:ux_orders_gateway_order_id"`
	PendingPaymentID *uuid.UUID          `gorm:"column:pending_payment_id;type:uuid"`
	CustomerName     string              `gorm:"column:customer_name;not null"`
	Mobile           string              `gorm:"column:mobile;not null"`
	Email            *string             `gorm:"column:email"`
	AddressLine1     string              `gorm:"column:address_line1;not null"`
	AddressLine2     *string             `gorm:"column:address_line2"`
	City             string              `gorm:"column:city;not null"`
	State            string              `gorm:"column:state;not null"`
	Pincode          string              `gorm:"column:pincode;not null"`
	SubtotalPaise    int64               `gorm:"column:subtotal_paise;not null"`
	DiscountPaise    int64               `gorm:"column:discount_paise;not null"`
	DeliveryPaise    int64               `gorm:"column:delivery_paise;not null"`
	TotalPaise       int64               `gorm:"column:total_paise;not null"`
	CouponCode       *string             `gorm:"column:coupon_code"`
	Status           enums.OrderStatus   `gorm:"column:status;type:varchar(16);not null;index"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:varchar(16);not null"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID"`
	Payment          *Payment            `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem is denormalized at purchase time so later catalog edits do not
// rewrite order history.
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	SizeID         *uuid.UUID `gorm:"column:size_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	SizeLabel      *string    `gorm:"column:size_label"`
	UnitPricePaise int64      `gorm:"column:unit_price_paise;not null"`
	Quantity       int        `gorm:"column:quantity;not null"`
	ImageURL       *string    `gorm:"column:image_url"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Payment records the captured gateway payment behind an order.
type Payment struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID                `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_payments_order_id"`
	Provider         string                   `gorm:"column:provider;not null"`
	GatewayOrderID   string                   `gorm:"column:gateway_order_id;not null;index"`
	GatewayPaymentID string                   `gorm:"column:gateway_payment_id;not null"`
	Method           *string                  `gorm:"column:method"`
	AmountPaise      int64                    `gorm:"column:amount_paise;not null"`
	Status           string                   `gorm:"column:status;not null"`
	Source           enums.FinalizationSource `gorm:"column:source;type:varchar(16);not null"`
	CapturedAt       time.Time                `gorm:"column:captured_at;not null"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
