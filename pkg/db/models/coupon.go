package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/enums"
)

// Coupon is a discount code. FlatAmountPaise applies to FLAT coupons and
// Percentage (0-100) to PERCENTAGE coupons.
type Coupon struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code             string             `gorm:"column:code;not null;uniqueIndex:ux_coupons_code"`
	DiscountType     enums.DiscountType `gorm:"column:discount_type;type:varchar(16);not null"`
	FlatAmountPaise  int64              `gorm:"column:flat_amount_paise;not null"`
	Percentage       decimal.Decimal    `gorm:"column:percentage;type:numeric(5,2);not null"`
	MaxDiscountPaise *int64             `gorm:"column:max_discount_paise"`
	MinSubtotalPaise int64              `gorm:"column:min_subtotal_paise;not null"`
	UsageLimit       *int               `gorm:"column:usage_limit"`
	PerUserLimit     *int               `gorm:"column:per_user_limit"`
	UsedCount        int                `gorm:"column:used_count;not null"`
	StartsAt         *time.Time         `gorm:"column:starts_at"`
	ExpiresAt        *time.Time         `gorm:"column:expires_at"`
	IsActive         bool               `gorm:"column:is_active;not null"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// CouponRedemption records one use of a coupon by a finalized order.
type CouponRedemption struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CouponID  uuid.UUID `gorm:"column:coupon_id;type:uuid;not null;index:ix_coupon_redemptions_coupon_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:ix_coupon_redemptions_coupon_user"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_coupon_redemptions_order_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *CouponRedemption) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
