package delivery

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/types"
)

// SettingsRepository reads and writes the single delivery settings row.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) WithTx(tx *gorm.DB) *SettingsRepository {
	if tx == nil {
		return r
	}
	return &SettingsRepository{db: tx}
}

// Get returns the stored settings, or DefaultSettings when none were saved.
func (r *SettingsRepository) Get(ctx context.Context) (models.DeliverySettings, error) {
	var settings models.DeliverySettings
	err := r.db.WithContext(ctx).Where("id = ?", models.DeliverySettingsID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return models.DeliverySettings{}, err
	}
	return settings, nil
}

// Upsert replaces the settings row, creating it on first save.
func (r *SettingsRepository) Upsert(ctx context.Context, settings models.DeliverySettings) (models.DeliverySettings, error) {
	settings.ID = models.DeliverySettingsID
	if settings.ServiceablePincodes == nil {
		settings.ServiceablePincodes = types.StringList{}
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pan_india",
			"free_delivery_enabled",
			"free_delivery_threshold_paise",
			"flat_charge_paise",
			"charge_type",
			"serviceable_pincodes",
			"updated_at",
		}),
	}).Create(&settings).Error
	if err != nil {
		return models.DeliverySettings{}, err
	}
	return r.Get(ctx)
}
