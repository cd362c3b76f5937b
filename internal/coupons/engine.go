// Package coupons validates discount codes and computes their discount.
package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/money"
)

const (
	MsgNotFound     = "Invalid coupon code"
	MsgInactive     = "This coupon is no longer active"
	MsgNotStarted   = "This coupon is not active yet"
	MsgExpired      = "This coupon has expired"
	MsgUsageLimit   = "This coupon has reached its usage limit"
	MsgPerUserLimit = "You have already used this coupon"
	MsgApplied      = "Coupon applied"
)

type store interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int64, error)
}

// Input is a validation request. UserID is optional; without it per-user
// caps are not checked.
type Input struct {
	Code          string
	SubtotalPaise int64
	UserID        *uuid.UUID
}

// Result reports whether the coupon applies. DiscountPaise is zero unless
// Valid, and never exceeds the subtotal.
type Result struct {
	Valid         bool
	Code          string
	DiscountPaise int64
	Message       string
	Coupon        *models.Coupon
}

type Engine struct {
	store store
	now   func() time.Time
}

func NewEngine(store store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// NormalizeCode trims and upper-cases a user-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks existence, active window, usage caps and minimum
// subtotal, in that order, and computes the discount. It never records
// usage; only order finalization does.
func (e *Engine) Validate(ctx context.Context, in Input) (Result, error) {
	code := NormalizeCode(in.Code)
	res := Result{Code: code}
	if code == "" {
		res.Message = MsgNotFound
		return res, nil
	}

	coupon, err := e.store.FindByCode(ctx, code)
	if err != nil {
		return Result{}, fmt.Errorf("find coupon %q: %w", code, err)
	}
	if coupon == nil {
		res.Message = MsgNotFound
		return res, nil
	}

	now := e.now()
	switch {
	case !coupon.IsActive:
		res.Message = MsgInactive
		return res, nil
	case coupon.StartsAt != nil && now.Before(*coupon.StartsAt):
		res.Message = MsgNotStarted
		return res, nil
	case coupon.ExpiresAt != nil && !now.Before(*coupon.ExpiresAt):
		res.Message = MsgExpired
		return res, nil
	case coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit:
		res.Message = MsgUsageLimit
		return res, nil
	}

	if coupon.PerUserLimit != nil && in.UserID != nil {
		used, err := e.store.CountUserRedemptions(ctx, coupon.ID, *in.UserID)
		if err != nil {
			return Result{}, fmt.Errorf("count redemptions: %w", err)
		}
		if used >= int64(*coupon.PerUserLimit) {
			res.Message = MsgPerUserLimit
			return res, nil
		}
	}

	if in.SubtotalPaise < coupon.MinSubtotalPaise {
		res.Message = fmt.Sprintf("Minimum order value of ₹%s required", money.Format(coupon.MinSubtotalPaise))
		return res, nil
	}

	res.Valid = true
	res.Coupon = coupon
	res.DiscountPaise = Discount(coupon, in.SubtotalPaise)
	res.Message = MsgApplied
	return res, nil
}

// Discount computes the coupon's discount on subtotal, clamped to
// [0, subtotal]. Percentage discounts round down and respect the optional
// cap.
func Discount(coupon *models.Coupon, subtotalPaise int64) int64 {
	if coupon == nil || subtotalPaise <= 0 {
		return 0
	}
	var discount int64
	switch coupon.DiscountType {
	case enums.DiscountTypeFlat:
		discount = coupon.FlatAmountPaise
	case enums.DiscountTypePercentage:
		discount = money.Percentage(subtotalPaise, coupon.Percentage)
		if coupon.MaxDiscountPaise != nil && discount > *coupon.MaxDiscountPaise {
			discount = *coupon.MaxDiscountPaise
		}
	}
	if discount < 0 {
		return 0
	}
	if discount > subtotalPaise {
		return subtotalPaise
	}
	return discount
}
