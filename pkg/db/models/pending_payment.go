package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/types"
)

// PendingPayment stages one gateway checkout attempt until it is finalized,
// failed or cleaned up.
type PendingPayment struct {
	ID             uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	GatewayOrderID string                     `gorm:"column:gateway_order_id;not null;uniqueIndex:ux_pending_payments_gateway_order_id"`
	UserID         uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	Cart           CartSnapshot               `gorm:"column:cart;type:jsonb;not null"`
	AmountPaise    int64                      `gorm:"column:amount_paise;not null"`
	Status         enums.PendingPaymentStatus `gorm:"column:status;type:varchar(16);not null;index"`
	FailureReason  *string                    `gorm:"column:failure_reason"`
	CreatedAt      time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PendingPayment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// CartSnapshot freezes the priced cart and delivery details at checkout time.
type CartSnapshot struct {
	Items         []CartSnapshotItem `json:"items"`
	CouponCode    string             `json:"coupon_code,omitempty"`
	SubtotalPaise int64              `json:"subtotal_paise"`
	DiscountPaise int64              `json:"discount_paise"`
	DeliveryPaise int64              `json:"delivery_paise"`
	TotalPaise    int64              `json:"total_paise"`
	Shipping      ShippingDetails    `json:"shipping"`
}

// CartSnapshotItem is one line of the snapshot. SizeID is set when the
// customer picked a size variant.
type CartSnapshotItem struct {
	ProductID      uuid.UUID  `json:"product_id"`
	SizeID         *uuid.UUID `json:"size_id,omitempty"`
	Name           string     `json:"name"`
	SizeLabel      string     `json:"size_label,omitempty"`
	UnitPricePaise int64      `json:"unit_price_paise"`
	Quantity       int        `json:"quantity"`
	ImageURL       string     `json:"image_url,omitempty"`
}

type ShippingDetails struct {
	CustomerName string `json:"customer_name"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

func (c CartSnapshot) Value() (driver.Value, error) {
	return types.MarshalJSONColumn(c)
}

func (c *CartSnapshot) Scan(value any) error {
	*c = CartSnapshot{}
	return types.ScanJSONColumn(value, c)
}
