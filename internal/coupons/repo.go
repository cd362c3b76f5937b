package coupons

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByCode returns nil, nil when no coupon carries code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *Repository) CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CouponRedemption{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count, err
}

func (r *Repository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

// Redeem records, inside the order's transaction tx, that orderID used the
// coupon and bumps its usage counter. Caps are enforced at validation time;
// a paid order is never refused here.
func (r *Repository) Redeem(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error {
	db := r.WithTx(tx).db
	redemption := &models.CouponRedemption{CouponID: couponID, UserID: userID, OrderID: orderID}
	if err := db.WithContext(ctx).Create(redemption).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ?", couponID).
		Updates(map[string]any{
			"used_count": gorm.Expr("used_count + 1"),
			"updated_at": time.Now().UTC(),
		}).Error
}
