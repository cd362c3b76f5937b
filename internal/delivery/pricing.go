// Package delivery prices shipping and answers pincode serviceability from
// the singleton delivery settings.
package delivery

import (
	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
)

// ComputeCharge returns the delivery charge for a cart subtotal.
//
//	free delivery on and subtotal >= threshold -> 0
//	FLAT                                        -> flat charge
//	CONDITIONAL                                 -> flat charge below threshold, else 0
func ComputeCharge(subtotalPaise int64, s models.DeliverySettings) int64 {
	if s.FreeDeliveryEnabled && subtotalPaise >= s.FreeDeliveryThresholdPaise {
		return 0
	}
	charge := s.FlatChargePaise
	if charge < 0 {
		charge = 0
	}
	switch s.ChargeType {
	case enums.DeliveryChargeTypeConditional:
		if subtotalPaise >= s.FreeDeliveryThresholdPaise {
			return 0
		}
		return charge
	default:
		return charge
	}
}

// DefaultSettings is served before an admin saves the first configuration.
func DefaultSettings() models.DeliverySettings {
	return models.DeliverySettings{
		ID:                         models.DeliverySettingsID,
		PanIndia:                   true,
		FreeDeliveryEnabled:        true,
		FreeDeliveryThresholdPaise: 99900,
		FlatChargePaise:            9900,
		ChargeType:                 enums.DeliveryChargeTypeFlat,
	}
}
