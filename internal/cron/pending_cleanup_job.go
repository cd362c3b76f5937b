package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

const (
	defaultPendingRetention = 7 * 24 * time.Hour
	defaultFailedRetention  = 30 * 24 * time.Hour
)

type pendingCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, status enums.PendingPaymentStatus, cutoff time.Time) (int64, error)
}

type PendingCleanupJobParams struct {
	Logger           *logger.Logger
	Repository       pendingCleanupRepo
	PendingRetention time.Duration
	FailedRetention  time.Duration
}

// NewPendingCleanupJob deletes abandoned PENDING attempts and old FAILED
// ones. SUCCESS records are kept as the order's provenance.
func NewPendingCleanupJob(params PendingCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("pending payment repository required")
	}
	if params.PendingRetention <= 0 {
		params.PendingRetention = defaultPendingRetention
	}
	if params.FailedRetention <= 0 {
		params.FailedRetention = defaultFailedRetention
	}
	return &pendingCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: map[enums.PendingPaymentStatus]time.Duration{
			enums.PendingPaymentStatusPending: params.PendingRetention,
			enums.PendingPaymentStatusFailed:  params.FailedRetention,
		},
		now:       time.Now,
	}, nil
}

type pendingCleanupJob struct {
	logg      *logger.Logger
	repo      pendingCleanupRepo
	retention map[enums.PendingPaymentStatus]time.Duration
	now       func() time.Time
}

func (j *pendingCleanupJob) Name() string { return "pending-payment-cleanup" }

func (j *pendingCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs error
	for _, status := range []enums.PendingPaymentStatus{enums.PendingPaymentStatusPending, enums.PendingPaymentStatusFailed} {
		cutoff := now.Add(-j.retention[status])
		deleted, err := j.repo.DeleteOlderThan(ctx, status, cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", status, err))
			continue
		}
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"status":       status.String(),
			"cutoff":       cutoff,
			"rows_deleted": deleted,
		})
		j.logg.Info(logCtx, "pending_payment.cleanup")
	}
	return errs
}
