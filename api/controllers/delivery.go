package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leafcart/nursery-backend/api/responses"
	"github.com/leafcart/nursery-backend/api/validators"
	"github.com/leafcart/nursery-backend/internal/delivery"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

type PincodeChecker interface {
	CheckPincode(ctx context.Context, pincode string, subtotalPaise int64) (delivery.Availability, error)
}

// PincodeCheck is public. The optional subtotal query parameter previews
// the delivery charge for a cart of that size.
func PincodeCheck(svc PincodeChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		subtotal, err := validators.ParseQueryInt(r, "subtotal_paise", 0, 0, 100_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		availability, err := svc.CheckPincode(r.Context(), strings.TrimSpace(chi.URLParam(r, "pincode")), int64(subtotal))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, availability)
	}
}
