package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/leafcart/nursery-backend/api/middleware"
	"github.com/leafcart/nursery-backend/api/responses"
	"github.com/leafcart/nursery-backend/api/validators"
	"github.com/leafcart/nursery-backend/internal/finalization"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

// PaymentFinalizer is the slice of the finalization engine the payment
// endpoints use.
type PaymentFinalizer interface {
	Finalize(ctx context.Context, sig finalization.Signal) (finalization.Result, error)
	Cancel(ctx context.Context, in finalization.CancelInput) (finalization.CancelResult, error)
}

type verifyPaymentRequest struct {
	GatewayOrderID string `json:"razorpay_order_id" validate:"required,max=64"`
	PaymentID      string `json:"razorpay_payment_id" validate:"required,max=64"`
	Signature      string `json:"razorpay_signature" validate:"required,max=256"`
}

type cancelPaymentRequest struct {
	GatewayOrderID string `json:"razorpay_order_id" validate:"required,max=64"`
}

// PaymentVerify handles the storefront callback after the gateway modal
// reports success. The body carries the fields the checkout widget returns.
// An attempt that no longer exists answers 200 with status "noop", the same
// as the webhook path.
func PaymentVerify(engine PaymentFinalizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}
		userID, ok := middleware.UserUUID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := engine.Finalize(r.Context(), finalization.Signal{
			Source:         enums.FinalizationSourceCallback,
			GatewayOrderID: strings.TrimSpace(payload.GatewayOrderID),
			PaymentID:      strings.TrimSpace(payload.PaymentID),
			Signature:      strings.TrimSpace(payload.Signature),
			UserID:         &userID,
			IPAddress:      middleware.ClientIP(r),
			UserAgent:      validators.SanitizeString(r.UserAgent(), 512),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

// PaymentCancel records that the customer dismissed the gateway modal.
func PaymentCancel(engine PaymentFinalizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}
		userID, ok := middleware.UserUUID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		var payload cancelPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := engine.Cancel(r.Context(), finalization.CancelInput{
			UserID:         userID,
			GatewayOrderID: strings.TrimSpace(payload.GatewayOrderID),
			IPAddress:      middleware.ClientIP(r),
			UserAgent:      validators.SanitizeString(r.UserAgent(), 512),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}
