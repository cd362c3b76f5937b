// Package orders exposes order history to customers and the order
// lifecycle to admins.
package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

// Service defines order reads and admin status changes.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID, filter Filter) (*SummaryList, error)
	GetForUser(ctx context.Context, userID uuid.UUID, orderNumber string) (*Detail, error)
	AdminList(ctx context.Context, filter Filter) (*SummaryList, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*Detail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to enums.OrderStatus) (*Detail, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the order service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, filter Filter) (*SummaryList, error) {
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// GetForUser hides orders owned by someone else behind NOT_FOUND.
func (s *service) GetForUser(ctx context.Context, userID uuid.UUID, orderNumber string) (*Detail, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	detail := DetailOf(*order)
	return &detail, nil
}

func (s *service) AdminList(ctx context.Context, filter Filter) (*SummaryList, error) {
	return s.list(ctx, filter)
}

func (s *service) AdminGet(ctx context.Context, id uuid.UUID) (*Detail, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	detail := DetailOf(*order)
	return &detail, nil
}

// UpdateStatus applies an admin transition. Transitions not allowed from
// the current status, or lost to a concurrent update, are STATE_CONFLICT.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, to enums.OrderStatus) (*Detail, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if !order.Status.CanTransitionTo(to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, to))
	}
	updated, err := s.repo.UpdateStatus(ctx, id, order.Status, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":    id.String(),
		"from_status": order.Status.String(),
		"to_status":   to.String(),
	})
	s.logg.Info(ctx, "order.status_updated")

	order.Status = to
	detail := DetailOf(*order)
	return &detail, nil
}

func (s *service) list(ctx context.Context, filter Filter) (*SummaryList, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if filter.PaymentMethod != nil && !filter.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_from must not be after date_to")
	}
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := &SummaryList{Orders: make([]Summary, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, order := range page.Items {
		out.Orders = append(out.Orders, summaryOf(order))
	}
	return out, nil
}

func mapLookupError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}
