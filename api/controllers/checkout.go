package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/api/middleware"
	"github.com/leafcart/nursery-backend/api/responses"
	"github.com/leafcart/nursery-backend/api/validators"
	"github.com/leafcart/nursery-backend/internal/catalog"
	checkoutsvc "github.com/leafcart/nursery-backend/internal/checkout"
	"github.com/leafcart/nursery-backend/pkg/db/models"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

type checkoutRequest struct {
	Items      []checkoutItem  `json:"items" validate:"required,min=1,max=50,dive"`
	CouponCode string          `json:"coupon_code" validate:"max=32"`
	Shipping   shippingDetails `json:"shipping" validate:"required"`
}

type checkoutItem struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	SizeID    *uuid.UUID `json:"size_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"required,min=1,max=100"`
}

type shippingDetails struct {
	CustomerName string `json:"customer_name" validate:"required,max=120"`
	Mobile       string `json:"mobile" validate:"required,mobile"`
	Email        string `json:"email" validate:"omitempty,email"`
	AddressLine1 string `json:"address_line1" validate:"required,max=200"`
	AddressLine2 string `json:"address_line2" validate:"max=200"`
	City         string `json:"city" validate:"required,max=80"`
	State        string `json:"state" validate:"required,max=80"`
	Pincode      string `json:"pincode" validate:"required,pincode"`
}

func (s shippingDetails) model() models.ShippingDetails {
	return models.ShippingDetails{
		CustomerName: validators.SanitizeString(s.CustomerName, 120),
		Mobile:       validators.SanitizeString(s.Mobile, 16),
		Email:        validators.SanitizeString(s.Email, 254),
		AddressLine1: validators.SanitizeString(s.AddressLine1, 200),
		AddressLine2: validators.SanitizeString(s.AddressLine2, 200),
		City:         validators.SanitizeString(s.City, 80),
		State:        validators.SanitizeString(s.State, 80),
		Pincode:      validators.SanitizeString(s.Pincode, 6),
	}
}

// checkoutInput authenticates and decodes a checkout body. Unit prices are
// never accepted from the client; the body only names products and
// quantities.
func checkoutInput(r *http.Request) (checkoutsvc.Input, error) {
	userID, ok := middleware.UserUUID(r.Context())
	if !ok {
		return checkoutsvc.Input{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	var payload checkoutRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return checkoutsvc.Input{}, err
	}
	lines := make([]catalog.Line, 0, len(payload.Items))
	for _, item := range payload.Items {
		lines = append(lines, catalog.Line{ProductID: item.ProductID, SizeID: item.SizeID, Quantity: item.Quantity})
	}
	return checkoutsvc.Input{
		UserID:     userID,
		Lines:      lines,
		CouponCode: payload.CouponCode,
		Shipping:   payload.Shipping.model(),
		IPAddress:  middleware.ClientIP(r),
		UserAgent:  validators.SanitizeString(r.UserAgent(), 512),
	}, nil
}

// CheckoutRazorpay prices the cart and opens a gateway order for it.
func CheckoutRazorpay(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		in, err := checkoutInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.InitiateRazorpay(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

// CheckoutCOD places a cash-on-delivery order.
func CheckoutCOD(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		in, err := checkoutInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.PlaceCOD(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
