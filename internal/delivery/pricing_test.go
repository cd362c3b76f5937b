package delivery

import (
	"testing"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
)

func TestComputeCharge(t *testing.T) {
	settings := func(free bool, mode enums.DeliveryChargeType) models.DeliverySettings {
		return models.DeliverySettings{
			FreeDeliveryEnabled:        free,
			FreeDeliveryThresholdPaise: 99900,
			FlatChargePaise:            9900,
			ChargeType:                 mode,
		}
	}

	cases := []struct {
		name     string
		subtotal int64
		settings models.DeliverySettings
		want     int64
	}{
		{"free at threshold", 99900, settings(true, enums.DeliveryChargeTypeFlat), 0},
		{"flat below threshold", 99800, settings(true, enums.DeliveryChargeTypeFlat), 9900},
		{"conditional below threshold", 99800, settings(true, enums.DeliveryChargeTypeConditional), 9900},
		{"conditional above threshold", 100000, settings(true, enums.DeliveryChargeTypeConditional), 0},
		{"flat ignores threshold when free delivery off", 200000, settings(false, enums.DeliveryChargeTypeFlat), 9900},
		{"conditional works without free toggle", 200000, settings(false, enums.DeliveryChargeTypeConditional), 0},
	}
	for _, tc := range cases {
		if got := ComputeCharge(tc.subtotal, tc.settings); got != tc.want {
			t.Fatalf("%s: ComputeCharge(%d) = %d, want %d", tc.name, tc.subtotal, got, tc.want)
		}
	}
}

func TestServiceable(t *testing.T) {
	listed := models.DeliverySettings{ServiceablePincodes: []string{"560001"}}
	if !Serviceable("560001", listed) {
		t.Fatal("listed pincode should be serviceable")
	}
	if Serviceable("110001", listed) {
		t.Fatal("unlisted pincode should not be serviceable")
	}
	if !Serviceable("110001", models.DeliverySettings{PanIndia: true}) {
		t.Fatal("pan-India serves every valid pincode")
	}
	if Serviceable("012345", models.DeliverySettings{PanIndia: true}) {
		t.Fatal("pincodes never start with 0")
	}
}
