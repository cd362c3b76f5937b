package delivery

import (
	"context"
	"regexp"
	"strings"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
)

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

type settingsStore interface {
	Get(ctx context.Context) (models.DeliverySettings, error)
	Upsert(ctx context.Context, settings models.DeliverySettings) (models.DeliverySettings, error)
}

// Availability answers a pincode check.
type Availability struct {
	Pincode             string `json:"pincode"`
	Serviceable         bool   `json:"serviceable"`
	DeliveryChargePaise int64  `json:"delivery_charge_paise"`
	FreeDeliveryAbove   *int64 `json:"free_delivery_above_paise,omitempty"`
}

type Service struct {
	settings settingsStore
}

func NewService(settings settingsStore) *Service {
	return &Service{settings: settings}
}

func (s *Service) Settings(ctx context.Context) (models.DeliverySettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.DeliverySettings{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load delivery settings")
	}
	return settings, nil
}

// UpdateSettings validates and saves the settings aggregate.
func (s *Service) UpdateSettings(ctx context.Context, in models.DeliverySettings) (models.DeliverySettings, error) {
	if !in.ChargeType.IsValid() {
		return models.DeliverySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery charge type")
	}
	if in.FlatChargePaise < 0 || in.FreeDeliveryThresholdPaise < 0 {
		return models.DeliverySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery amounts must not be negative")
	}
	pincodes := make([]string, 0, len(in.ServiceablePincodes))
	seen := map[string]struct{}{}
	for _, p := range in.ServiceablePincodes {
		p = strings.TrimSpace(p)
		if !ValidPincode(p) {
			return models.DeliverySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid pincode "+p)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pincodes = append(pincodes, p)
	}
	in.ServiceablePincodes = pincodes

	saved, err := s.settings.Upsert(ctx, in)
	if err != nil {
		return models.DeliverySettings{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save delivery settings")
	}
	return saved, nil
}

// CheckPincode reports whether pincode is served and what an order of
// subtotalPaise would pay for delivery.
func (s *Service) CheckPincode(ctx context.Context, pincode string, subtotalPaise int64) (Availability, error) {
	pincode = strings.TrimSpace(pincode)
	if !ValidPincode(pincode) {
		return Availability{}, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be a 6 digit Indian postal code")
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return Availability{}, err
	}
	out := Availability{
		Pincode:             pincode,
		Serviceable:         Serviceable(pincode, settings),
		DeliveryChargePaise: ComputeCharge(subtotalPaise, settings),
	}
	if settings.FreeDeliveryEnabled {
		threshold := settings.FreeDeliveryThresholdPaise
		out.FreeDeliveryAbove = &threshold
	}
	return out, nil
}

func ValidPincode(pincode string) bool {
	return pincodePattern.MatchString(pincode)
}

// Serviceable is true for every valid pincode in pan-India mode, otherwise
// only for the listed ones.
func Serviceable(pincode string, settings models.DeliverySettings) bool {
	if !ValidPincode(pincode) {
		return false
	}
	return settings.PanIndia || settings.ServiceablePincodes.Contains(pincode)
}
