package cron

import (
	"context"
	"fmt"

	"github.com/leafcart/nursery-backend/internal/finalization"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

type reconciler interface {
	Reconcile(ctx context.Context) (finalization.ReconcileReport, error)
}

type ReconcileJobParams struct {
	Logger     *logger.Logger
	Reconciler reconciler
}

// NewReconcileJob wraps the payment reconciliation sweep.
func NewReconcileJob(params ReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	return &reconcileJob{logg: params.Logger, reconciler: params.Reconciler}, nil
}

type reconcileJob struct {
	logg       *logger.Logger
	reconciler reconciler
}

func (j *reconcileJob) Name() string { return "payment-reconcile" }

func (j *reconcileJob) Run(ctx context.Context) error {
	report, err := j.reconciler.Reconcile(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned":   report.Scanned,
		"repaired":  report.Repaired,
		"finalized": report.Finalized,
		"failed":    report.Failed,
		"expired":   report.Expired,
		"deferred":  report.Deferred,
	})
	if err != nil {
		j.logg.Warn(logCtx, "payment.reconcile_partial")
		return fmt.Errorf("payment reconcile: %w", err)
	}
	j.logg.Info(logCtx, "payment.reconcile_complete")
	return nil
}
