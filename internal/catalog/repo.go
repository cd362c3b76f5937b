// Package catalog resolves purchasable items and owns stock movement.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/db/models"
)

var (
	ErrNotFound          = errors.New("catalog item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Line is a requested quantity of a product, optionally of one size.
type Line struct {
	ProductID uuid.UUID
	SizeID    *uuid.UUID
	Quantity  int
}

// Item is the purchasable unit behind a Line: the product itself or one of
// its sizes, with the price and stock that apply to it.
type Item struct {
	ProductID         uuid.UUID
	SizeID            *uuid.UUID
	Name              string
	SizeLabel         string
	ImageURL          string
	PricePaise        int64
	Stock             int
	LowStockThreshold int
}

// StockLevel is the stock left on an item after a decrement.
type StockLevel struct {
	Item      Item
	Remaining int
}

// Low reports whether the item reached its low-stock threshold.
func (s StockLevel) Low() bool {
	return s.Remaining <= s.Item.LowStockThreshold
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Resolve loads the active product and, when sizeID is set, the size that
// belongs to it. Products sold in sizes require a size.
func (r *Repository) Resolve(ctx context.Context, productID uuid.UUID, sizeID *uuid.UUID) (Item, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Sizes").
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}

	item := Item{
		ProductID:         product.ID,
		Name:              product.Name,
		PricePaise:        product.PricePaise,
		Stock:             product.Stock,
		LowStockThreshold: product.LowStockThreshold,
	}
	if product.ImageURL != nil {
		item.ImageURL = *product.ImageURL
	}
	if sizeID == nil {
		if len(product.Sizes) > 0 {
			return Item{}, fmt.Errorf("%w: %s requires a size", ErrNotFound, product.Name)
		}
		return item, nil
	}
	for _, size := range product.Sizes {
		if size.ID == *sizeID {
			id := size.ID
			item.SizeID = &id
			item.SizeLabel = size.Label
			item.PricePaise = size.PricePaise
			item.Stock = size.Stock
			item.LowStockThreshold = size.LowStockThreshold
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("%w: size %s of %s", ErrNotFound, sizeID, product.Name)
}

// DecrementStock removes line.Quantity from the item's stock only if enough
// is available, in a single conditional UPDATE.
func (r *Repository) DecrementStock(ctx context.Context, line Line) (int, error) {
	if line.Quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive")
	}
	table, id := "products", line.ProductID
	if line.SizeID != nil {
		table, id = "product_sizes", *line.SizeID
	}

	res := r.db.WithContext(ctx).
		Table(table).
		Where("id = ? AND stock >= ?", id, line.Quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrInsufficientStock
	}

	var remaining int
	if err := r.db.WithContext(ctx).Table(table).Select("stock").Where("id = ?", id).Scan(&remaining).Error; err != nil {
		return 0, err
	}
	return remaining, nil
}
