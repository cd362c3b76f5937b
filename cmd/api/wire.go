package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leafcart/nursery-backend/api/controllers"
	"github.com/leafcart/nursery-backend/api/routes"
	"github.com/leafcart/nursery-backend/internal/catalog"
	"github.com/leafcart/nursery-backend/internal/checkout"
	"github.com/leafcart/nursery-backend/internal/coupons"
	"github.com/leafcart/nursery-backend/internal/delivery"
	"github.com/leafcart/nursery-backend/internal/finalization"
	"github.com/leafcart/nursery-backend/internal/notifications"
	"github.com/leafcart/nursery-backend/internal/orders"
	"github.com/leafcart/nursery-backend/internal/paymentlog"
	"github.com/leafcart/nursery-backend/internal/pendingpayments"
	"github.com/leafcart/nursery-backend/internal/ratelimit"
	razorpaywebhook "github.com/leafcart/nursery-backend/internal/webhooks/razorpay"
	"github.com/leafcart/nursery-backend/pkg/config"
	"github.com/leafcart/nursery-backend/pkg/db"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/metrics"
	"github.com/leafcart/nursery-backend/pkg/pubsub"
	"github.com/leafcart/nursery-backend/pkg/razorpay"
	"github.com/leafcart/nursery-backend/pkg/redis"
)

const webhookGuardScope = "razorpay-webhook"

type application struct {
	routes     routes.Deps
	dispatcher *notifications.Dispatcher
	pingers    map[string]controllers.Pinger
	closers    []func() error
}

func (a *application) close(logg *logger.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logg.Error(context.Background(), "error closing dependency", err)
		}
	}
}

// wire builds every service behind the HTTP surface. redisClient may be nil.
func wire(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, reg prometheus.Registerer) (*application, error) {
	app := &application{pingers: map[string]controllers.Pinger{"database": dbClient}}
	conn := dbClient.DB()

	paymentMetrics := metrics.NewPaymentMetrics(reg)
	gateway, err := razorpay.NewClient(cfg.Razorpay, razorpay.WithObserver(paymentMetrics))
	if err != nil {
		return nil, fmt.Errorf("razorpay client: %w", err)
	}

	notifier, err := buildNotifier(ctx, cfg, logg, app)
	if err != nil {
		return nil, err
	}
	app.dispatcher = notifications.NewDispatcher(notifier, cfg.Notifications.Timeout, logg)

	catalogSvc := catalog.NewService(catalog.NewRepository(conn))
	couponRepo := coupons.NewRepository(conn)
	deliverySvc := delivery.NewService(delivery.NewSettingsRepository(conn))
	pricer := checkout.NewPricer(catalogSvc, coupons.NewEngine(couponRepo), couponRepo, deliverySvc)
	pendingRepo := pendingpayments.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	logRepo := paymentlog.NewRepository(conn)
	paymentLogger := paymentlog.NewLogger(logRepo, logg)

	checkoutSvc, err := checkout.NewService(checkout.Deps{
		Tx:         dbClient,
		Pricer:     pricer,
		Gateway:    gateway,
		Pending:    pendingRepo,
		Orders:     ordersRepo,
		Stock:      catalogSvc,
		Coupons:    couponRepo,
		PaymentLog: paymentLogger,
		Notifier:   app.dispatcher,
		Logger:     logg,
		AdminEmail: cfg.Notifications.AdminEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout service: %w", err)
	}

	engine, err := finalization.NewEngine(finalization.Deps{
		Tx:         dbClient,
		Gateway:    gateway,
		Pending:    pendingRepo,
		Orders:     ordersRepo,
		Stock:      catalogSvc,
		Pricer:     pricer,
		Coupons:    couponRepo,
		PaymentLog: paymentLogger,
		Notifier:   app.dispatcher,
		Metrics:    paymentMetrics,
		Logger:     logg,
	}, finalization.Options{
		TolerancePaise: cfg.Payments.AmountTolerancePaise,
		SweepGrace:     cfg.Payments.SweepGrace,
		PendingExpiry:  cfg.Payments.PendingExpiry,
		SweepBatch:     cfg.Cron.SweepBatch,
		AdminEmail:     cfg.Notifications.AdminEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("finalization engine: %w", err)
	}

	ordersSvc, err := orders.NewService(ordersRepo, logg)
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	webhookSvc, err := razorpaywebhook.NewService(engine, paymentLogger, logg)
	if err != nil {
		return nil, fmt.Errorf("webhook service: %w", err)
	}

	limiter, err := buildLimiter(ctx, cfg, redisClient)
	if err != nil {
		return nil, err
	}

	app.routes = routes.Deps{
		Config:           cfg,
		Logger:           logg,
		Pingers:          app.pingers,
		Limiter:          limiter,
		RateLimitMetrics: metrics.NewRateLimitMetrics(reg),
		Checkout:         checkoutSvc,
		Coupons:          pricer,
		Delivery:         deliverySvc,
		DeliverySettings: deliverySvc,
		Orders:           ordersSvc,
		Payments:         engine,
		PaymentLogs:      logRepo,
		Webhook:          webhookSvc,
		WebhookVerifier:  gateway,
	}
	if redisClient != nil {
		app.pingers["redis"] = redisClient
		guard, err := razorpaywebhook.NewIdempotencyGuard(redisClient, cfg.Payments.WebhookEventTTL, webhookGuardScope)
		if err != nil {
			return nil, fmt.Errorf("webhook guard: %w", err)
		}
		app.routes.WebhookGuard = guard
	}
	return app, nil
}

func buildNotifier(ctx context.Context, cfg *config.Config, logg *logger.Logger, app *application) (notifications.Notifier, error) {
	if !cfg.Notifications.UsePubSub() {
		return notifications.NewLogNotifier(logg), nil
	}
	client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	app.closers = append(app.closers, client.Close)
	app.pingers["pubsub"] = client
	return notifications.NewPubSubNotifier(client, client.NotificationTopic())
}

// buildLimiter shares counters through redis when configured for it and
// falls back to process memory otherwise.
func buildLimiter(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*ratelimit.Limiter, error) {
	if cfg.RateLimit.UseRedis() && redisClient != nil {
		store, err := ratelimit.NewRedisStore(redisClient)
		if err != nil {
			return nil, fmt.Errorf("rate limit store: %w", err)
		}
		return ratelimit.New(store)
	}
	return ratelimit.New(ratelimit.NewMemoryStore(ctx, cfg.RateLimit.SweepInterval))
}
