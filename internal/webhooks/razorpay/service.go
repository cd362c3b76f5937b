// Package razorpaywebhook applies verified Razorpay webhook deliveries.
package razorpaywebhook

import (
	"context"
	"fmt"

	"github.com/leafcart/nursery-backend/internal/finalization"
	"github.com/leafcart/nursery-backend/internal/paymentlog"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/razorpay"
)

type finalizer interface {
	Finalize(ctx context.Context, sig finalization.Signal) (finalization.Result, error)
}

type paymentLogger interface {
	LogEvent(ctx context.Context, p paymentlog.Params)
}

// Delivery carries request metadata recorded with the event.
type Delivery struct {
	EventID   string
	IPAddress string
	UserAgent string
}

type Service struct {
	finalizer finalizer
	logs      paymentLogger
	logg      *logger.Logger
}

func NewService(finalizer finalizer, logs paymentLogger, logg *logger.Logger) (*Service, error) {
	if finalizer == nil {
		return nil, fmt.Errorf("finalizer required")
	}
	if logs == nil {
		return nil, fmt.Errorf("payment logger required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{finalizer: finalizer, logs: logs, logg: logg}, nil
}

// HandleEvent routes one verified event. The returned error is non-nil only
// for failures a redelivery could fix; fatal outcomes such as stock or
// amount rejections are acknowledged after being recorded.
func (s *Service) HandleEvent(ctx context.Context, event *razorpay.WebhookEvent, d Delivery) (finalization.Outcome, error) {
	if event == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "webhook event required")
	}
	gwOrderID := event.GatewayOrderID()
	ctx = s.logg.WithFields(ctx, map[string]any{
		"webhook_event": event.Event,
		"event_id":      d.EventID,
	})
	if gwOrderID == "" {
		s.logg.Warn(ctx, "razorpay.webhook_without_order")
		return finalization.OutcomeIgnored, nil
	}
	ctx = s.logg.WithCorrelationID(ctx, gwOrderID)

	switch {
	case event.IsSuccess():
		sig := finalization.Signal{
			Source:         enums.FinalizationSourceWebhook,
			GatewayOrderID: gwOrderID,
			IPAddress:      d.IPAddress,
			UserAgent:      d.UserAgent,
			Payload:        event,
		}
		if p := event.PaymentEntity(); p != nil {
			sig.PaymentID = p.ID
			sig.AmountPaise = p.Amount
			sig.Method = p.Method
		} else if event.Payload.Order != nil {
			sig.AmountPaise = event.Payload.Order.Entity.AmountPaid
		}
		res, err := s.finalizer.Finalize(ctx, sig)
		if err == nil {
			return res.Outcome, nil
		}
		typed := pkgerrors.As(err)
		if typed != nil && !pkgerrors.MetadataFor(typed.Code()).Retryable {
			s.logg.Warn(s.logg.WithField(ctx, "error_code", string(typed.Code())), "razorpay.webhook_rejected")
			return finalization.OutcomeIgnored, nil
		}
		return "", err
	case event.Event == razorpay.EventPaymentFailed:
		// Razorpay lets the customer retry on the same order, so a failed
		// attempt leaves the pending payment open.
		p := paymentlog.Params{
			CorrelationID: gwOrderID,
			EventType:     enums.PaymentLogEventFailed,
			Status:        enums.PaymentLogStatusFailed,
			Message:       "gateway reported a failed payment attempt",
			Payload:       event,
			IPAddress:     d.IPAddress,
			UserAgent:     d.UserAgent,
		}
		if pay := event.PaymentEntity(); pay != nil {
			amount := pay.Amount
			p.AmountPaise = &amount
			if pay.ErrorDescription != nil {
				p.Message += ": " + *pay.ErrorDescription
			}
		}
		s.logs.LogEvent(ctx, p)
		return finalization.OutcomeIgnored, nil
	default:
		s.logs.LogEvent(ctx, paymentlog.Params{
			CorrelationID: gwOrderID,
			EventType:     enums.PaymentLogEventWebhookReceived,
			Message:       "unhandled webhook event " + event.Event,
			Payload:       event,
			IPAddress:     d.IPAddress,
			UserAgent:     d.UserAgent,
		})
		return finalization.OutcomeIgnored, nil
	}
}
