package finalization

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/leafcart/nursery-backend/internal/orders"
	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/razorpay"
)

// ReconcileReport counts what one sweep did.
type ReconcileReport struct {
	Scanned   int
	Repaired  int
	Finalized int
	Failed    int
	Expired   int
	Deferred  int
}

// Reconcile settles PENDING attempts older than the sweep grace period
// against the gateway. Per-record failures are collected and the record is
// retried on the next run.
func (e *Engine) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	now := e.now().UTC()
	stale, err := e.Pending.ListStale(ctx, now.Add(-e.opts.SweepGrace), e.opts.SweepBatch)
	if err != nil {
		return report, fmt.Errorf("list stale pending payments: %w", err)
	}

	var errs error
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return report, multierr.Append(errs, err)
		}
		pending := &stale[i]
		report.Scanned++
		if err := e.reconcileOne(ctx, pending, &report); err != nil {
			report.Deferred++
			errs = multierr.Append(errs, fmt.Errorf("reconcile %s: %w", pending.GatewayOrderID, err))
		}
	}
	return report, errs
}

func (e *Engine) reconcileOne(ctx context.Context, pending *models.PendingPayment, report *ReconcileReport) error {
	ctx = e.Logger.WithCorrelationID(ctx, pending.GatewayOrderID)
	sig := Signal{Source: enums.FinalizationSourceSweep, GatewayOrderID: pending.GatewayOrderID}

	order, err := e.Orders.FindByGatewayOrderID(ctx, pending.GatewayOrderID)
	switch {
	case err == nil:
		moved, err := e.Pending.MarkSucceeded(ctx, pending.ID)
		if err != nil {
			return err
		}
		if moved {
			p := e.pendingParams(sig, pending, enums.PaymentLogEventRepaired, enums.PaymentLogStatusSuccess, "order "+order.OrderNumber+" already existed")
			p.OrderID = &order.ID
			e.PaymentLog.LogEvent(ctx, p)
			report.Repaired++
		}
		return nil
	case !errors.Is(err, orders.ErrNotFound):
		return err
	}

	payments, err := e.Gateway.FetchOrderPayments(ctx, pending.GatewayOrderID)
	if err != nil {
		e.Logger.Error(ctx, "payment.sweep_lookup_failed", err)
		return err
	}

	var captured *razorpay.Payment
	failed := 0
	for i := range payments {
		switch {
		case payments[i].IsCaptured():
			captured = &payments[i]
		case payments[i].IsFailed():
			failed++
		}
		if captured != nil {
			break
		}
	}

	switch {
	case captured != nil:
		sig.PaymentID = captured.ID
		sig.AmountPaise = captured.Amount
		sig.Method = captured.Method
		sig.Payload = captured
		res, err := e.Finalize(ctx, sig)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && !pkgerrors.MetadataFor(typed.Code()).Retryable {
				report.Failed++
				return nil
			}
			return err
		}
		if res.Outcome == OutcomeFinalized {
			report.Finalized++
		}
	case len(payments) > 0 && failed == len(payments):
		moved, err := e.Pending.MarkFailed(ctx, pending.ID, ReasonPaymentFailed)
		if err != nil {
			return err
		}
		if moved {
			e.PaymentLog.LogEvent(ctx, e.pendingParams(sig, pending, enums.PaymentLogEventFailed, enums.PaymentLogStatusFailed, "every gateway payment attempt failed"))
			report.Failed++
		}
	case pending.CreatedAt.Before(e.now().UTC().Add(-e.opts.PendingExpiry)):
		moved, err := e.Pending.MarkFailed(ctx, pending.ID, ReasonExpired)
		if err != nil {
			return err
		}
		if moved {
			e.PaymentLog.LogEvent(ctx, e.pendingParams(sig, pending, enums.PaymentLogEventExpired, enums.PaymentLogStatusFailed, "no captured payment before expiry"))
			report.Expired++
		}
	}
	return nil
}
