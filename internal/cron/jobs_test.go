package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafcart/nursery-backend/internal/finalization"
	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

type fakeReconciler struct {
	report finalization.ReconcileReport
	err    error
	calls  int
}

func (f *fakeReconciler) Reconcile(context.Context) (finalization.ReconcileReport, error) {
	f.calls++
	return f.report, f.err
}

func TestReconcileJob(t *testing.T) {
	rec := &fakeReconciler{report: finalization.ReconcileReport{Scanned: 3, Finalized: 1}}
	job, err := NewReconcileJob(ReconcileJobParams{Logger: logger.Nop(), Reconciler: rec})
	require.NoError(t, err)
	assert.Equal(t, "payment-reconcile", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, rec.calls)

	rec.err = errors.New("reconcile order_1: gateway down")
	assert.ErrorContains(t, job.Run(context.Background()), "order_1")
}

type cleanupCall struct {
	status enums.PendingPaymentStatus
	cutoff time.Time
}

type fakeCleanupRepo struct {
	calls []cleanupCall
	errOn enums.PendingPaymentStatus
}

func (f *fakeCleanupRepo) DeleteOlderThan(_ context.Context, status enums.PendingPaymentStatus, cutoff time.Time) (int64, error) {
	f.calls = append(f.calls, cleanupCall{status: status, cutoff: cutoff})
	if status == f.errOn {
		return 0, errors.New("boom")
	}
	return 2, nil
}

func TestPendingCleanupJobUsesRetentionPerStatus(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	repo := &fakeCleanupRepo{}
	jobIface, err := NewPendingCleanupJob(PendingCleanupJobParams{Logger: logger.Nop(), Repository: repo})
	require.NoError(t, err)
	job := jobIface.(*pendingCleanupJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, repo.calls, 2)
	assert.Equal(t, enums.PendingPaymentStatusPending, repo.calls[0].status)
	assert.Equal(t, now.Add(-7*24*time.Hour), repo.calls[0].cutoff)
	assert.Equal(t, enums.PendingPaymentStatusFailed, repo.calls[1].status)
	assert.Equal(t, now.Add(-30*24*time.Hour), repo.calls[1].cutoff)
}

func TestPendingCleanupJobContinuesAfterFailure(t *testing.T) {
	repo := &fakeCleanupRepo{errOn: enums.PendingPaymentStatusPending}
	job, err := NewPendingCleanupJob(PendingCleanupJobParams{Logger: logger.Nop(), Repository: repo})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, repo.calls, 2)
}
