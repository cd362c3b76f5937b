package models

import (
	"time"

	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/types"
)

// DeliverySettingsID is the fixed primary key of the singleton settings row.
const DeliverySettingsID = 1

// DeliverySettings is the single admin-managed delivery configuration.
type DeliverySettings struct {
	ID                         int                      `gorm:"column:id;primaryKey;autoIncrement:false"`
	PanIndia                   bool                     `gorm:"column:pan_india;not null"`
	FreeDeliveryEnabled        bool                     `gorm:"column:free_delivery_enabled;not null"`
	FreeDeliveryThresholdPaise int64                    `gorm:"column:free_delivery_threshold_paise;not null"`
	FlatChargePaise            int64                    `gorm:"column:flat_charge_paise;not null"`
	ChargeType                 enums.DeliveryChargeType `gorm:"column:charge_type;type:varchar(16);not null"`
	ServiceablePincodes        types.StringList         `gorm:"column:serviceable_pincodes;type:jsonb;not null"`
	UpdatedAt                  time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (DeliverySettings) TableName() string {
	return "delivery_settings"
}
