package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leafcart/nursery-backend/api/controllers"
	admincontrollers "github.com/leafcart/nursery-backend/api/controllers/admin"
	ordercontrollers "github.com/leafcart/nursery-backend/api/controllers/orders"
	webhookcontrollers "github.com/leafcart/nursery-backend/api/controllers/webhooks"
	"github.com/leafcart/nursery-backend/api/middleware"
	"github.com/leafcart/nursery-backend/api/responses"
	checkoutsvc "github.com/leafcart/nursery-backend/internal/checkout"
	"github.com/leafcart/nursery-backend/internal/orders"
	"github.com/leafcart/nursery-backend/internal/ratelimit"
	"github.com/leafcart/nursery-backend/pkg/config"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/metrics"
)

// Deps is everything the HTTP surface needs. Limiter, WebhookGuard and
// Metrics may be nil.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	// Readiness probes keyed by dependency name; nil entries are skipped.
	Pingers map[string]controllers.Pinger
	Metrics http.Handler

	Limiter          *ratelimit.Limiter
	RateLimitMetrics *metrics.RateLimitMetrics

	Checkout         checkoutsvc.Service
	Coupons          controllers.CouponPreviewer
	Delivery         controllers.PincodeChecker
	DeliverySettings admincontrollers.DeliverySettingsService
	Orders           orders.Service
	Payments         controllers.PaymentFinalizer
	PaymentLogs      admincontrollers.PaymentLogReader
	Webhook          webhookcontrollers.RazorpayWebhookService
	WebhookVerifier  webhookcontrollers.WebhookVerifier
	WebhookGuard     webhookcontrollers.WebhookGuard
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeMethod, "method not allowed"))
	})

	rl := cfg.RateLimit
	trusted, err := rl.TrustedProxyNets()
	if err != nil {
		// Load rejects bad entries; a hand-built config falls back to the peer address.
		if logg != nil {
			logg.Error(context.Background(), "rate_limit.trusted_proxies_invalid", err)
		}
		trusted = nil
	}
	limit := func(name string, max int, window time.Duration, key middleware.KeyFunc) func(http.Handler) http.Handler {
		if d.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RateLimit(d.Limiter, ratelimit.Policy{Name: name, MaxRequests: max, Window: window}, key, d.RateLimitMetrics, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Pingers))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/razorpay", webhookcontrollers.RazorpayWebhook(d.Webhook, d.WebhookVerifier, d.WebhookGuard, logg))
		r.With(limit("pincode", rl.PincodeLimit, rl.PincodeWindow, middleware.PeerKey(trusted))).
			Get("/delivery/pincode/{pincode}", controllers.PincodeCheck(d.Delivery, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.With(limit("coupon", rl.CouponLimit, rl.CouponWindow, middleware.UserKey)).
				Post("/coupons/validate", controllers.CouponValidate(d.Coupons, logg))

			r.Route("/checkout", func(r chi.Router) {
				r.Use(limit("checkout", rl.CheckoutLimit, rl.CheckoutWindow, middleware.UserKey))
				r.Post("/razorpay", controllers.CheckoutRazorpay(d.Checkout, logg))
				r.Post("/cod", controllers.CheckoutCOD(d.Checkout, logg))
			})

			r.Route("/payments/razorpay", func(r chi.Router) {
				r.Post("/verify", controllers.PaymentVerify(d.Payments, logg))
				r.With(limit("payment_cancel", rl.CancelLimit, rl.CancelWindow, middleware.UserKey)).
					Post("/cancel", controllers.PaymentCancel(d.Payments, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(d.Orders, logg))
				r.Get("/{orderNumber}", ordercontrollers.Detail(d.Orders, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.AdminList(d.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.AdminDetail(d.Orders, logg))
			r.Patch("/{orderId}/status", ordercontrollers.AdminUpdateStatus(d.Orders, logg))
		})

		r.Route("/payment-logs", func(r chi.Router) {
			readOnly := admincontrollers.ReadOnly(logg)
			r.Get("/", admincontrollers.PaymentLogList(d.PaymentLogs, logg))
			r.Get("/{logId}", admincontrollers.PaymentLogDetail(d.PaymentLogs, logg))
			for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
				r.Method(method, "/", readOnly)
				r.Method(method, "/{logId}", readOnly)
			}
		})

		r.Route("/delivery-settings", func(r chi.Router) {
			r.Get("/", admincontrollers.DeliverySettingsGet(d.DeliverySettings, logg))
			r.Put("/", admincontrollers.DeliverySettingsPut(d.DeliverySettings, logg))
		})
	})

	return r
}
