package finalization

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/internal/pendingpayments"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
)

// CancelInput is sent when the customer closes the gateway modal.
type CancelInput struct {
	UserID         uuid.UUID
	GatewayOrderID string
	IPAddress      string
	UserAgent      string
}

type CancelResult struct {
	Status  enums.PendingPaymentStatus `json:"status"`
	Skipped bool                       `json:"skipped"`
}

// Cancel fails a PENDING attempt. Attempts that already succeeded or
// failed are reported as skipped and left untouched.
func (e *Engine) Cancel(ctx context.Context, in CancelInput) (CancelResult, error) {
	ctx = e.Logger.WithCorrelationID(ctx, in.GatewayOrderID)
	pending, err := e.Pending.GetByGatewayOrderID(ctx, in.GatewayOrderID)
	if errors.Is(err, pendingpayments.ErrNotFound) {
		return CancelResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "payment attempt not found")
	}
	if err != nil {
		return CancelResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending payment")
	}
	if pending.UserID != in.UserID {
		return CancelResult{}, pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to another user")
	}
	if pending.Status != enums.PendingPaymentStatusPending {
		return CancelResult{Status: pending.Status, Skipped: true}, nil
	}

	moved, err := e.Pending.MarkFailed(ctx, pending.ID, ReasonCanceled)
	if err != nil {
		return CancelResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel pending payment")
	}
	if !moved {
		current, err := e.Pending.GetByGatewayOrderID(ctx, in.GatewayOrderID)
		if err != nil {
			return CancelResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload pending payment")
		}
		return CancelResult{Status: current.Status, Skipped: true}, nil
	}

	sig := Signal{GatewayOrderID: in.GatewayOrderID, IPAddress: in.IPAddress, UserAgent: in.UserAgent}
	e.PaymentLog.LogEvent(ctx, e.pendingParams(sig, pending, enums.PaymentLogEventCanceled, enums.PaymentLogStatusFailed, "customer closed the payment window"))
	e.Logger.Info(ctx, "payment.canceled")
	return CancelResult{Status: enums.PendingPaymentStatusFailed}, nil
}
