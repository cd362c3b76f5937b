package paymentlog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/pagination"
)

// Filter narrows the admin payment log listing. Zero fields are ignored.
type Filter struct {
	CorrelationID    string
	EventType        *enums.PaymentLogEvent
	Status           *enums.PaymentLogStatus
	OrderID          *uuid.UUID
	PendingPaymentID *uuid.UUID
	From             *time.Time
	To               *time.Time
	Limit            int
	Cursor           *pagination.Cursor
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

func (r *Repository) Create(ctx context.Context, entry *models.PaymentLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.PaymentLog, error) {
	var entry models.PaymentLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByCorrelation returns one attempt's timeline, oldest first.
func (r *Repository) ListByCorrelation(ctx context.Context, correlationID string) ([]models.PaymentLog, error) {
	var entries []models.PaymentLog
	err := r.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *Repository) List(ctx context.Context, f Filter) (pagination.Page[models.PaymentLog], error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentLog{})
	if v := strings.TrimSpace(f.CorrelationID); v != "" {
		query = query.Where("correlation_id = ?", v)
	}
	if f.EventType != nil {
		query = query.Where("event_type = ?", *f.EventType)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.OrderID != nil {
		query = query.Where("order_id = ?", *f.OrderID)
	}
	if f.PendingPaymentID != nil {
		query = query.Where("pending_payment_id = ?", *f.PendingPaymentID)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at <= ?", *f.To)
	}

	var rows []models.PaymentLog
	if err := pagination.Apply(query, "payment_logs", f.Limit, f.Cursor).Find(&rows).Error; err != nil {
		return pagination.Page[models.PaymentLog]{}, err
	}
	return pagination.Build(rows, f.Limit, func(l models.PaymentLog) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	}), nil
}
