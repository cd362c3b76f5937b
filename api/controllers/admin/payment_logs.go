// Package admin serves the back-office endpoints that are not order
// management: the read-only payment log and delivery settings.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/api/responses"
	"github.com/leafcart/nursery-backend/api/validators"
	"github.com/leafcart/nursery-backend/internal/paymentlog"
	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/money"
	"github.com/leafcart/nursery-backend/pkg/pagination"
)

type PaymentLogReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.PaymentLog, error)
	List(ctx context.Context, f paymentlog.Filter) (pagination.Page[models.PaymentLog], error)
}

type paymentLogView struct {
	ID               uuid.UUID              `json:"id"`
	CorrelationID    string                 `json:"correlation_id"`
	EventType        enums.PaymentLogEvent  `json:"event_type"`
	Status           enums.PaymentLogStatus `json:"status"`
	OrderID          *uuid.UUID             `json:"order_id,omitempty"`
	PendingPaymentID *uuid.UUID             `json:"pending_payment_id,omitempty"`
	AmountPaise      *int64                 `json:"amount_paise,omitempty"`
	Amount           string                 `json:"amount,omitempty"`
	Message          string                 `json:"message"`
	Payload          map[string]any         `json:"payload,omitempty"`
	IPAddress        *string                `json:"ip_address,omitempty"`
	UserAgent        *string                `json:"user_agent,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

type paymentLogPage struct {
	Logs       []paymentLogView `json:"logs"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func newPaymentLogView(l models.PaymentLog) paymentLogView {
	view := paymentLogView{
		ID:               l.ID,
		CorrelationID:    l.CorrelationID,
		EventType:        l.EventType,
		Status:           l.Status,
		OrderID:          l.OrderID,
		PendingPaymentID: l.PendingPaymentID,
		AmountPaise:      l.AmountPaise,
		Message:          l.Message,
		Payload:          l.Payload,
		IPAddress:        l.IPAddress,
		UserAgent:        l.UserAgent,
		CreatedAt:        l.CreatedAt,
	}
	if l.AmountPaise != nil {
		view.Amount = money.Format(*l.AmountPaise)
	}
	return view
}

// PaymentLogList pages through the audit trail. Every filter is optional.
func PaymentLogList(reader PaymentLogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment log unavailable"))
			return
		}
		filter, err := buildPaymentLogFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := reader.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payment logs"))
			return
		}
		out := paymentLogPage{Logs: make([]paymentLogView, 0, len(page.Items)), NextCursor: page.NextCursor}
		for _, entry := range page.Items {
			out.Logs = append(out.Logs, newPaymentLogView(entry))
		}
		responses.WriteSuccess(w, out)
	}
}

func PaymentLogDetail(reader PaymentLogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment log unavailable"))
			return
		}
		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "logId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment log id"))
			return
		}
		entry, err := reader.Get(r.Context(), id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "payment log not found"))
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment log"))
			return
		}
		responses.WriteSuccess(w, newPaymentLogView(*entry))
	}
}

// ReadOnly answers every mutating verb on the payment log with 405.
func ReadOnly(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", "GET, HEAD")
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethod, "payment logs are read-only"))
	}
}

func buildPaymentLogFilter(r *http.Request) (paymentlog.Filter, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return paymentlog.Filter{}, err
	}
	cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		return paymentlog.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter := paymentlog.Filter{
		CorrelationID: validators.SanitizeString(r.URL.Query().Get("correlation_id"), 64),
		Limit:         limit,
		Cursor:        cursor,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("event_type")); raw != "" {
		event, err := enums.ParsePaymentLogEvent(raw)
		if err != nil {
			return paymentlog.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event_type filter")
		}
		filter.EventType = &event
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParsePaymentLogStatus(raw)
		if err != nil {
			return paymentlog.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}
	if filter.OrderID, err = validators.ParseQueryUUID(r, "order_id"); err != nil {
		return paymentlog.Filter{}, err
	}
	if filter.PendingPaymentID, err = validators.ParseQueryUUID(r, "pending_payment_id"); err != nil {
		return paymentlog.Filter{}, err
	}
	if filter.From, err = validators.ParseQueryTime(r, "from"); err != nil {
		return paymentlog.Filter{}, err
	}
	if filter.To, err = validators.ParseQueryTime(r, "to"); err != nil {
		return paymentlog.Filter{}, err
	}
	return filter, nil
}
