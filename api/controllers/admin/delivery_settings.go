package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/leafcart/nursery-backend/api/responses"
	"github.com/leafcart/nursery-backend/api/validators"
	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/types"
)

type DeliverySettingsService interface {
	Settings(ctx context.Context) (models.DeliverySettings, error)
	UpdateSettings(ctx context.Context, in models.DeliverySettings) (models.DeliverySettings, error)
}

type deliverySettingsBody struct {
	PanIndia                   bool     `json:"pan_india"`
	FreeDeliveryEnabled        bool     `json:"free_delivery_enabled"`
	FreeDeliveryThresholdPaise int64    `json:"free_delivery_threshold_paise" validate:"min=0"`
	FlatChargePaise            int64    `json:"flat_charge_paise" validate:"min=0"`
	ChargeType                 string   `json:"charge_type" validate:"required"`
	ServiceablePincodes        []string `json:"serviceable_pincodes" validate:"max=5000,dive,pincode"`
}

type deliverySettingsView struct {
	deliverySettingsBody
	UpdatedAt time.Time `json:"updated_at"`
}

func newDeliverySettingsView(s models.DeliverySettings) deliverySettingsView {
	pincodes := []string(s.ServiceablePincodes)
	if pincodes == nil {
		pincodes = []string{}
	}
	return deliverySettingsView{
		deliverySettingsBody: deliverySettingsBody{
			PanIndia:                   s.PanIndia,
			FreeDeliveryEnabled:        s.FreeDeliveryEnabled,
			FreeDeliveryThresholdPaise: s.FreeDeliveryThresholdPaise,
			FlatChargePaise:            s.FlatChargePaise,
			ChargeType:                 s.ChargeType.String(),
			ServiceablePincodes:        pincodes,
		},
		UpdatedAt: s.UpdatedAt,
	}
}

func DeliverySettingsGet(svc DeliverySettingsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		settings, err := svc.Settings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newDeliverySettingsView(settings))
	}
}

// DeliverySettingsPut replaces the singleton settings aggregate.
func DeliverySettingsPut(svc DeliverySettingsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		var payload deliverySettingsBody
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		chargeType, err := enums.ParseDeliveryChargeType(payload.ChargeType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery charge type"))
			return
		}
		saved, err := svc.UpdateSettings(r.Context(), models.DeliverySettings{
			PanIndia:                   payload.PanIndia,
			FreeDeliveryEnabled:        payload.FreeDeliveryEnabled,
			FreeDeliveryThresholdPaise: payload.FreeDeliveryThresholdPaise,
			FlatChargePaise:            payload.FlatChargePaise,
			ChargeType:                 chargeType,
			ServiceablePincodes:        types.StringList(payload.ServiceablePincodes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithField(r.Context(), "charge_type", chargeType.String()), "delivery.settings_updated")
		responses.WriteSuccess(w, newDeliverySettingsView(saved))
	}
}
