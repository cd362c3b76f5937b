package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/api/middleware"
	"github.com/leafcart/nursery-backend/api/responses"
	"github.com/leafcart/nursery-backend/api/validators"
	checkoutsvc "github.com/leafcart/nursery-backend/internal/checkout"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

type CouponPreviewer interface {
	PreviewCoupon(ctx context.Context, userID *uuid.UUID, code string, subtotalPaise int64) (*checkoutsvc.CouponPreview, error)
}

type validateCouponRequest struct {
	CouponCode        string `json:"coupon_code" validate:"required,max=32"`
	CartSubtotalPaise int64  `json:"cart_subtotal_paise" validate:"min=0"`
}

// CouponValidate previews a coupon against a cart subtotal. It never
// records usage. An unusable coupon is a 200 with valid=false.
func CouponValidate(pricer CouponPreviewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}
		var payload validateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var userID *uuid.UUID
		if id, ok := middleware.UserUUID(r.Context()); ok {
			userID = &id
		}
		preview, err := pricer.PreviewCoupon(r.Context(), userID, payload.CouponCode, payload.CartSubtotalPaise)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}
