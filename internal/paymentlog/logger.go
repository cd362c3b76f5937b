// Package paymentlog writes the insert-only audit trail of payment attempts.
package paymentlog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

const savepointName = "payment_log"

// Params describes one audit event. CorrelationID is the gateway order id.
type Params struct {
	CorrelationID    string
	EventType        enums.PaymentLogEvent
	Status           enums.PaymentLogStatus
	OrderID          *uuid.UUID
	PendingPaymentID *uuid.UUID
	AmountPaise      *int64
	Message          string
	Payload          any
	IPAddress        string
	UserAgent        string
}

type Logger struct {
	repo *Repository
	logg *logger.Logger
}

func NewLogger(repo *Repository, logg *logger.Logger) *Logger {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Logger{repo: repo, logg: logg}
}

// LogEvent persists p. Failures are reported to the application log and
// otherwise swallowed.
func (l *Logger) LogEvent(ctx context.Context, p Params) {
	if l == nil || l.repo == nil {
		return
	}
	entry := buildEntry(p)
	if err := l.repo.Create(ctx, entry); err != nil {
		l.warn(ctx, p, err)
	}
}

// LogEventTx writes p inside tx under a savepoint, so a failed insert does
// not poison the surrounding transaction.
func (l *Logger) LogEventTx(ctx context.Context, tx *gorm.DB, p Params) {
	if l == nil || l.repo == nil {
		return
	}
	if tx == nil {
		l.LogEvent(ctx, p)
		return
	}
	if err := tx.SavePoint(savepointName).Error; err != nil {
		l.warn(ctx, p, err)
		return
	}
	if err := l.repo.WithTx(tx).Create(ctx, buildEntry(p)); err != nil {
		tx.RollbackTo(savepointName)
		l.warn(ctx, p, err)
	}
}

func (l *Logger) warn(ctx context.Context, p Params, err error) {
	ctx = l.logg.WithFields(ctx, map[string]any{
		"correlation_id": p.CorrelationID,
		"event_type":     p.EventType.String(),
	})
	l.logg.Error(ctx, "payment_log.write_failed", err)
}

func buildEntry(p Params) *models.PaymentLog {
	status := p.Status
	if status == "" {
		status = enums.PaymentLogStatusInfo
	}
	return &models.PaymentLog{
		CorrelationID:    p.CorrelationID,
		EventType:        p.EventType,
		Status:           status,
		OrderID:          p.OrderID,
		PendingPaymentID: p.PendingPaymentID,
		AmountPaise:      p.AmountPaise,
		Message:          p.Message,
		Payload:          Sanitize(p.Payload),
		IPAddress:        optional(p.IPAddress),
		UserAgent:        optional(truncate(p.UserAgent)),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
