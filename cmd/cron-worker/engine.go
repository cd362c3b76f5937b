package main

import (
	"context"
	"fmt"

	"github.com/leafcart/nursery-backend/internal/catalog"
	"github.com/leafcart/nursery-backend/internal/checkout"
	"github.com/leafcart/nursery-backend/internal/coupons"
	"github.com/leafcart/nursery-backend/internal/delivery"
	"github.com/leafcart/nursery-backend/internal/finalization"
	"github.com/leafcart/nursery-backend/internal/notifications"
	"github.com/leafcart/nursery-backend/internal/orders"
	"github.com/leafcart/nursery-backend/internal/paymentlog"
	"github.com/leafcart/nursery-backend/internal/pendingpayments"
	"github.com/leafcart/nursery-backend/pkg/config"
	"github.com/leafcart/nursery-backend/pkg/db"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/metrics"
	"github.com/leafcart/nursery-backend/pkg/pubsub"
	"github.com/leafcart/nursery-backend/pkg/razorpay"
)

// buildEngine wires the finalization engine the reconcile sweep runs on.
// The returned func closes the notifier's transport.
func buildEngine(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, paymentMetrics *metrics.PaymentMetrics) (*finalization.Engine, *notifications.Dispatcher, func(), error) {
	closeDeps := func() {}
	gateway, err := razorpay.NewClient(cfg.Razorpay, razorpay.WithObserver(paymentMetrics))
	if err != nil {
		return nil, nil, closeDeps, fmt.Errorf("razorpay client: %w", err)
	}

	var notifier notifications.Notifier = notifications.NewLogNotifier(logg)
	if cfg.Notifications.UsePubSub() {
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, nil, closeDeps, fmt.Errorf("pubsub client: %w", err)
		}
		closeDeps = func() {
			if err := client.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}
		if notifier, err = notifications.NewPubSubNotifier(client, client.NotificationTopic()); err != nil {
			return nil, nil, closeDeps, err
		}
	}
	dispatcher := notifications.NewDispatcher(notifier, cfg.Notifications.Timeout, logg)

	conn := dbClient.DB()
	catalogSvc := catalog.NewService(catalog.NewRepository(conn))
	couponRepo := coupons.NewRepository(conn)
	pricer := checkout.NewPricer(catalogSvc, coupons.NewEngine(couponRepo), couponRepo, delivery.NewService(delivery.NewSettingsRepository(conn)))

	engine, err := finalization.NewEngine(finalization.Deps{
		Tx:         dbClient,
		Gateway:    gateway,
		Pending:    pendingpayments.NewRepository(conn),
		Orders:     orders.NewRepository(conn),
		Stock:      catalogSvc,
		Pricer:     pricer,
		Coupons:    couponRepo,
		PaymentLog: paymentlog.NewLogger(paymentlog.NewRepository(conn), logg),
		Notifier:   dispatcher,
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
		return nil, nil, closeDeps, fmt.Errorf("finalization engine: %w", err)
	}
	return engine, dispatcher, closeDeps, nil
}
