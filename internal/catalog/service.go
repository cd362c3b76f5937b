package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
)

// Shortage describes one line that cannot be fulfilled.
type Shortage struct {
	ProductID uuid.UUID  `json:"product_id"`
	SizeID    *uuid.UUID `json:"size_id,omitempty"`
	Name      string     `json:"name"`
	Requested int        `json:"requested"`
	Available int        `json:"available"`
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ResolveLines looks up every line. Unknown items are validation errors;
// lines whose quantity exceeds current stock yield one OUT_OF_STOCK error
// listing every shortage.
func (s *Service) ResolveLines(ctx context.Context, lines []Line) ([]Item, error) {
	items := make([]Item, 0, len(lines))
	var shortages []Shortage
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		item, err := s.repo.Resolve(ctx, line.ProductID, line.SizeID)
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "item is no longer available")
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve catalog item")
		}
		if item.Stock < line.Quantity {
			shortages = append(shortages, Shortage{
				ProductID: item.ProductID,
				SizeID:    item.SizeID,
				Name:      displayName(item),
				Requested: line.Quantity,
				Available: item.Stock,
			})
		}
		items = append(items, item)
	}
	if len(shortages) > 0 {
		return nil, OutOfStock(shortages)
	}
	return items, nil
}

// Decrement takes stock for every line inside tx. The first line that
// cannot be satisfied aborts with OUT_OF_STOCK; the caller rolls tx back to
// undo earlier decrements.
func (s *Service) Decrement(ctx context.Context, tx *gorm.DB, lines []Line) ([]StockLevel, error) {
	repo := s.repo.WithTx(tx)
	levels := make([]StockLevel, 0, len(lines))
	for _, line := range lines {
		item, err := repo.Resolve(ctx, line.ProductID, line.SizeID)
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeOutOfStock, err, "item is no longer available").
				WithDetails([]Shortage{{ProductID: line.ProductID, SizeID: line.SizeID, Requested: line.Quantity}})
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve catalog item")
		}
		remaining, err := repo.DecrementStock(ctx, line)
		if errors.Is(err, ErrInsufficientStock) {
			return nil, OutOfStock([]Shortage{{
				ProductID: item.ProductID,
				SizeID:    item.SizeID,
				Name:      displayName(item),
				Requested: line.Quantity,
				Available: item.Stock,
			}})
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
		}
		levels = append(levels, StockLevel{Item: item, Remaining: remaining})
	}
	return levels, nil
}

func OutOfStock(shortages []Shortage) error {
	return pkgerrors.New(pkgerrors.CodeOutOfStock, "out of stock").WithDetails(shortages)
}

func displayName(item Item) string {
	if item.SizeLabel == "" {
		return item.Name
	}
	return item.Name + " (" + item.SizeLabel + ")"
}
