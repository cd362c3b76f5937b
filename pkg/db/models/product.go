package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/enums"
)

// Product is a sellable catalog entity: a plant, pot, combo or gift hamper.
// Stock lives here unless the product is sold in sizes, in which case each
// ProductSize carries its own stock.
type Product struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name              string            `gorm:"column:name;not null"`
	Slug              string            `gorm:"column:slug;not null;uniqueIndex:ux_products_slug"`
	Kind              enums.ProductKind `gorm:"column:kind;type:varchar(16);not null"`
	PricePaise        int64             `gorm:"column:price_paise;not null"`
	Stock             int               `gorm:"column:stock;not null"`
	LowStockThreshold int               `gorm:"column:low_stock_threshold;not null"`
	ImageURL          *string           `gorm:"column:image_url"`
	IsActive          bool              `gorm:"column:is_active;not null"`
	Sizes             []ProductSize     `gorm:"foreignKey:ProductID"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ProductSize is a size variant with its own price and stock.
type ProductSize struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID         uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Label             string    `gorm:"column:label;not null"`
	PricePaise        int64     `gorm:"column:price_paise;not null"`
	Stock             int       `gorm:"column:stock;not null"`
	LowStockThreshold int       `gorm:"column:low_stock_threshold;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *ProductSize) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
