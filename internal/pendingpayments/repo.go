// Package pendingpayments is the ledger of gateway checkout attempts that
// have not yet become orders.
package pendingpayments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
)

// ErrNotFound is returned when no pending payment matches.
var ErrNotFound = errors.New("pending payment not found")

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

func (r *Repository) Create(ctx context.Context, pending *models.PendingPayment) error {
	if pending.Status == "" {
		pending.Status = enums.PendingPaymentStatusPending
	}
	return r.db.WithContext(ctx).Create(pending).Error
}

func (r *Repository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PendingPayment, error) {
	var pending models.PendingPayment
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

// MarkSucceeded moves a PENDING record to SUCCESS. It reports false when
// the record was no longer PENDING, which makes the caller the loser of a
// concurrent finalization.
func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, enums.PendingPaymentStatusSuccess, nil)
}

// MarkFailed moves a PENDING record to FAILED with reason.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	return r.transition(ctx, id, enums.PendingPaymentStatusFailed, &reason)
}

func (r *Repository) transition(ctx context.Context, id uuid.UUID, to enums.PendingPaymentStatus, reason *string) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if reason != nil {
		updates["failure_reason"] = *reason
	}
	res := r.db.WithContext(ctx).
		Model(&models.PendingPayment{}).
		Where("id = ? AND status = ?", id, enums.PendingPaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListStale returns PENDING records created before cutoff, oldest first.
func (r *Repository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.PendingPayment, error) {
	var rows []models.PendingPayment
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.PendingPaymentStatusPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&rows).Error
	return rows, err
}

// DeleteOlderThan removes records in status last updated before cutoff.
func (r *Repository) DeleteOlderThan(ctx context.Context, status enums.PendingPaymentStatus, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", status, cutoff).
		Delete(&models.PendingPayment{})
	return res.RowsAffected, res.Error
}
