package webhooks

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/leafcart/nursery-backend/api/middleware"
	"github.com/leafcart/nursery-backend/api/responses"
	"github.com/leafcart/nursery-backend/api/validators"
	"github.com/leafcart/nursery-backend/internal/finalization"
	razorpaywebhook "github.com/leafcart/nursery-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/razorpay"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"

	maxWebhookBody = 1 << 20
)

type RazorpayWebhookService interface {
	HandleEvent(ctx context.Context, event *razorpay.WebhookEvent, d razorpaywebhook.Delivery) (finalization.Outcome, error)
}

// WebhookGuard deduplicates deliveries by event id.
type WebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type WebhookVerifier interface {
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}

// RazorpayWebhook verifies the signature over the raw body before decoding
// anything. Transient failures answer 5xx so the gateway redelivers; every
// other outcome is acknowledged with 200. guard may be nil, in which case
// redeliveries rely on the finalization replay path alone.
func RazorpayWebhook(svc RazorpayWebhookService, verifier WebhookVerifier, guard WebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "razorpay client unavailable"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		signature := strings.TrimSpace(r.Header.Get(signatureHeader))
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSignature, "razorpay signature missing"))
			return
		}
		if !verifier.VerifyWebhookSignature(payload, signature) {
			logg.Warn(logg.WithField(ctx, "ip", middleware.ClientIP(r)), "razorpay.webhook_signature_invalid")
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSignature, "invalid razorpay signature"))
			return
		}

		event, err := razorpay.ParseWebhookEvent(payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		eventID := strings.TrimSpace(r.Header.Get(eventIDHeader))
		if guard != nil && eventID != "" {
			alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if alreadyProcessed {
				responses.WriteSuccess(w, map[string]string{"status": "duplicate"})
				return
			}
		}

		outcome, err := svc.HandleEvent(ctx, event, razorpaywebhook.Delivery{
			EventID:   eventID,
			IPAddress: middleware.ClientIP(r),
			UserAgent: validators.SanitizeString(r.UserAgent(), 512),
		})
		if err != nil {
			if guard != nil && eventID != "" {
				_ = guard.Delete(ctx, eventID)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		logg.Info(logg.WithFields(ctx, map[string]any{
			"event_id":      eventID,
			"webhook_event": event.Event,
			"outcome":       string(outcome),
		}), "razorpay.webhook_processed")
		responses.WriteSuccess(w, map[string]string{"status": string(outcome)})
	}
}
