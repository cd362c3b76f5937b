// Package finalization turns a captured gateway payment into exactly one
// order. Webhooks, client callbacks and the reconciliation sweep all funnel
// through Engine.Finalize; whichever arrives first commits and the rest
// replay.
package finalization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/internal/catalog"
	"github.com/leafcart/nursery-backend/internal/checkout"
	"github.com/leafcart/nursery-backend/internal/notifications"
	"github.com/leafcart/nursery-backend/internal/orders"
	"github.com/leafcart/nursery-backend/internal/paymentlog"
	"github.com/leafcart/nursery-backend/internal/pendingpayments"
	"github.com/leafcart/nursery-backend/pkg/db"
	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/metrics"
	"github.com/leafcart/nursery-backend/pkg/razorpay"
)

const (
	defaultTolerancePaise = 100
	providerRazorpay      = "razorpay"

	ReasonCanceled       = "CANCELED"
	ReasonOutOfStock     = "OUT_OF_STOCK"
	ReasonAmountMismatch = "AMOUNT_MISMATCH"
	ReasonPaymentFailed  = "PAYMENT_FAILED"
	ReasonExpired        = "EXPIRED"
)

var errLostRace = errors.New("pending payment already finalized")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gateway interface {
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
	FetchOrderPayments(ctx context.Context, orderID string) ([]razorpay.Payment, error)
}

type stockKeeper interface {
	ResolveLines(ctx context.Context, lines []catalog.Line) ([]catalog.Item, error)
	Decrement(ctx context.Context, tx *gorm.DB, lines []catalog.Line) ([]catalog.StockLevel, error)
}

type repricer interface {
	Reprice(ctx context.Context, cart models.CartSnapshot) (checkout.Totals, *models.Coupon, error)
}

type couponRedeemer interface {
	Redeem(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error
}

type paymentLogger interface {
	LogEvent(ctx context.Context, p paymentlog.Params)
	LogEventTx(ctx context.Context, tx *gorm.DB, p paymentlog.Params)
}

type dispatcher interface {
	Dispatch(ctx context.Context, events ...notifications.Event)
}

// Signal is one report that a gateway order may have been paid.
type Signal struct {
	Source         enums.FinalizationSource
	GatewayOrderID string
	PaymentID      string
	// Signature and UserID are set by the client callback only.
	Signature string
	UserID    *uuid.UUID
	// AmountPaise is the captured amount reported by a webhook or the sweep.
	AmountPaise int64
	Method      string
	IPAddress   string
	UserAgent   string
	Payload     any
}

type Outcome string

const (
	OutcomeFinalized  Outcome = "finalized"
	OutcomeReplayed   Outcome = "replayed"
	OutcomeNoop       Outcome = "noop"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeProcessing Outcome = "processing"
	OutcomeDeclined   Outcome = "declined"
)

// Result reports what a signal did. OrderID is set for finalized and
// replayed outcomes.
type Result struct {
	Outcome     Outcome    `json:"status"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	OrderNumber string     `json:"order_number,omitempty"`
}

type Options struct {
	TolerancePaise int64
	SweepGrace     time.Duration
	PendingExpiry  time.Duration
	SweepBatch     int
	AdminEmail     string
}

type Deps struct {
	Tx         txRunner
	Gateway    gateway
	Pending    *pendingpayments.Repository
	Orders     orders.Repository
	Stock      stockKeeper
	Pricer     repricer
	Coupons    couponRedeemer
	PaymentLog paymentLogger
	Notifier   dispatcher
	Metrics    *metrics.PaymentMetrics
	Logger     *logger.Logger
}

type Engine struct {
	Deps
	opts Options
	now  func() time.Time
}

func NewEngine(deps Deps, opts Options) (*Engine, error) {
	switch {
	case deps.Tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case deps.Gateway == nil:
		return nil, fmt.Errorf("payment gateway required")
	case deps.Pending == nil:
		return nil, fmt.Errorf("pending payment repository required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Stock == nil:
		return nil, fmt.Errorf("stock keeper required")
	case deps.Pricer == nil:
		return nil, fmt.Errorf("repricer required")
	case deps.Coupons == nil:
		return nil, fmt.Errorf("coupon redeemer required")
	case deps.PaymentLog == nil:
		return nil, fmt.Errorf("payment logger required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if opts.TolerancePaise <= 0 {
		opts.TolerancePaise = defaultTolerancePaise
	}
	if opts.SweepGrace <= 0 {
		opts.SweepGrace = 15 * time.Minute
	}
	if opts.PendingExpiry <= 0 {
		opts.PendingExpiry = 24 * time.Hour
	}
	if opts.SweepBatch <= 0 {
		opts.SweepBatch = 100
	}
	return &Engine{Deps: deps, opts: opts, now: time.Now}, nil
}

// Finalize consumes one payment signal. Unknown gateway orders are no-ops,
// already finalized ones replay the existing order, and a captured payment
// against a PENDING record commits the order, its stock decrement, the
// coupon redemption and the FINALIZED log in one transaction.
func (e *Engine) Finalize(ctx context.Context, sig Signal) (res Result, err error) {
	ctx = e.Logger.WithCorrelationID(ctx, sig.GatewayOrderID)
	defer func() {
		outcome := string(res.Outcome)
		if err != nil {
			outcome = "error"
			if typed := pkgerrors.As(err); typed != nil {
				outcome = string(typed.Code())
			}
		}
		e.Metrics.IncFinalization(sig.Source.String(), outcome)
	}()

	if received, ok := receivedEvent(sig.Source); ok {
		e.PaymentLog.LogEvent(ctx, e.params(sig, received, enums.PaymentLogStatusInfo, "signal received"))
	}

	pending, err := e.Pending.GetByGatewayOrderID(ctx, sig.GatewayOrderID)
	if errors.Is(err, pendingpayments.ErrNotFound) {
		e.PaymentLog.LogEvent(ctx, e.params(sig, enums.PaymentLogEventIgnored, enums.PaymentLogStatusInfo, "no pending payment for gateway order"))
		e.Logger.Warn(ctx, "payment.unknown_gateway_order")
		return Result{Outcome: OutcomeNoop}, nil
	}
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending payment")
	}
	if sig.UserID != nil && *sig.UserID != pending.UserID {
		return Result{}, pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to another user")
	}

	switch pending.Status {
	case enums.PendingPaymentStatusSuccess:
		return e.replay(ctx, sig, pending)
	case enums.PendingPaymentStatusFailed:
		p := e.pendingParams(sig, pending, enums.PaymentLogEventIgnored, enums.PaymentLogStatusInfo, "pending payment already failed")
		e.PaymentLog.LogEvent(ctx, p)
		if sig.Source == enums.FinalizationSourceCallback {
			return Result{}, pkgerrors.New(pkgerrors.CodeStateConflict, "payment attempt is no longer open")
		}
		return Result{Outcome: OutcomeIgnored}, nil
	}

	paid := sig.AmountPaise
	if sig.Source == enums.FinalizationSourceCallback {
		if !e.Gateway.VerifyPaymentSignature(sig.GatewayOrderID, sig.PaymentID, sig.Signature) {
			e.PaymentLog.LogEvent(ctx, e.pendingParams(sig, pending, enums.PaymentLogEventFailed, enums.PaymentLogStatusFailed, "payment signature mismatch"))
			e.Logger.Warn(ctx, "payment.signature_invalid")
			return Result{}, pkgerrors.New(pkgerrors.CodeSignature, "payment signature is invalid")
		}
		payment, err := e.Gateway.FetchPayment(ctx, sig.PaymentID)
		if err != nil {
			event := enums.PaymentLogEventFailed
			if razorpay.IsTimeout(err) {
				event = enums.PaymentLogEventTimeout
			}
			e.PaymentLog.LogEvent(ctx, e.pendingParams(sig, pending, event, enums.PaymentLogStatusPending, "payment lookup failed: "+err.Error()))
			e.Logger.Error(ctx, "payment.fetch_failed", err)
			return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment status is not yet available")
		}
		if payment.OrderID != "" && payment.OrderID != sig.GatewayOrderID {
			return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "payment does not belong to this order")
		}
		if payment.IsFailed() {
			e.PaymentLog.LogEvent(ctx, e.pendingParams(sig, pending, enums.PaymentLogEventFailed, enums.PaymentLogStatusFailed, "gateway reported payment failure"))
			return Result{Outcome: OutcomeDeclined}, nil
		}
		if !payment.IsCaptured() {
			return Result{Outcome: OutcomeProcessing}, nil
		}
		paid = payment.Amount
		if sig.Method == "" {
			sig.Method = payment.Method
		}
	}
	if paid <= 0 {
		paid = pending.AmountPaise
	}

	return e.commit(ctx, sig, pending, paid)
}

func (e *Engine) commit(ctx context.Context, sig Signal, pending *models.PendingPayment, paid int64) (Result, error) {
	lines := snapshotLines(pending.Cart.Items)
	if _, err := e.Stock.ResolveLines(ctx, lines); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock) {
			return e.fail(ctx, sig, pending, ReasonOutOfStock, err)
		}
		return Result{}, err
	}

	totals, coupon, err := e.Pricer.Reprice(ctx, pending.Cart)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reprice cart")
	}
	if diff := totals.TotalPaise - paid; diff > e.opts.TolerancePaise || -diff > e.opts.TolerancePaise {
		mismatch := pkgerrors.New(pkgerrors.CodeAmount, "paid amount does not match order total").WithDetails(map[string]int64{
			"expected_paise": totals.TotalPaise,
			"paid_paise":     paid,
		})
		return e.fail(ctx, sig, pending, ReasonAmountMismatch, mismatch)
	}

	cart := pending.Cart
	cart.SubtotalPaise = totals.SubtotalPaise
	cart.DiscountPaise = totals.DiscountPaise
	cart.DeliveryPaise = totals.DeliveryPaise
	cart.TotalPaise = totals.TotalPaise

	now := e.now().UTC()
	order := orders.NewFromSnapshot(pending.UserID, cart, enums.PaymentMethodRazorpay, enums.OrderStatusPaid, now)
	gwOrderID := pending.GatewayOrderID
	pendingID := pending.ID
	order.GatewayOrderID = &gwOrderID
	order.PendingPaymentID = &pendingID

	var levels []catalog.StockLevel
	err = e.Tx.WithTx(ctx, func(tx *gorm.DB) error {
		won, err := e.Pending.WithTx(tx).MarkSucceeded(ctx, pending.ID)
		if err != nil {
			return err
		}
		if !won {
			return errLostRace
		}
		repo := e.Orders.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "gateway_order_id") {
				return errLostRace
			}
			return err
		}
		taken, err := e.Stock.Decrement(ctx, tx, lines)
		if err != nil {
			return err
		}
		levels = taken
		payment := &models.Payment{
			OrderID:          order.ID,
			Provider:         providerRazorpay,
			GatewayOrderID:   gwOrderID,
			GatewayPaymentID: sig.PaymentID,
			Method:           optional(sig.Method),
			AmountPaise:      paid,
			Status:           razorpay.PaymentStatusCaptured,
			Source:           sig.Source,
			CapturedAt:       now,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return err
		}
		if coupon != nil {
			if err := e.Coupons.Redeem(ctx, tx, coupon.ID, pending.UserID, order.ID); err != nil {
				return err
			}
		}
		p := e.pendingParams(sig, pending, enums.PaymentLogEventFinalized, enums.PaymentLogStatusSuccess, "order "+order.OrderNumber+" created")
		p.OrderID = &order.ID
		p.AmountPaise = &paid
		e.PaymentLog.LogEventTx(ctx, tx, p)
		return nil
	})
	switch {
	case errors.Is(err, errLostRace):
		return e.afterLostRace(ctx, sig, pending)
	case pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock):
		return e.fail(ctx, sig, pending, ReasonOutOfStock, err)
	case err != nil:
		e.Logger.Error(ctx, "payment.finalize_failed", err)
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize payment")
	}

	ctx = e.Logger.WithFields(ctx, map[string]any{
		"order_number": order.OrderNumber,
		"source":       sig.Source.String(),
	})
	e.Logger.Info(ctx, "payment.finalized")
	if e.Notifier != nil {
		events := append([]notifications.Event{notifications.OrderConfirmed(order)}, checkout.LowStockEvents(e.opts.AdminEmail, levels)...)
		e.Notifier.Dispatch(ctx, events...)
	}
	id := order.ID
	return Result{Outcome: OutcomeFinalized, OrderID: &id, OrderNumber: order.OrderNumber}, nil
}

// fail closes a PENDING record that can never become an order. The money
// was captured, so operations are told to refund.
func (e *Engine) fail(ctx context.Context, sig Signal, pending *models.PendingPayment, reason string, cause error) (Result, error) {
	moved, err := e.Pending.MarkFailed(ctx, pending.ID, reason)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark pending payment failed")
	}
	if !moved {
		return e.afterLostRace(ctx, sig, pending)
	}
	p := e.pendingParams(sig, pending, enums.PaymentLogEventFailed, enums.PaymentLogStatusFailed, reason+": "+cause.Error())
	e.PaymentLog.LogEvent(ctx, p)
	e.Logger.Error(e.Logger.WithField(ctx, "reason", reason), "payment.finalize_rejected", cause)
	if e.Notifier != nil {
		e.Notifier.Dispatch(ctx, notifications.PaymentFailed(e.opts.AdminEmail, pending.GatewayOrderID, pending.Cart.Shipping.CustomerName, pending.AmountPaise, reason))
	}
	return Result{}, cause
}

// afterLostRace runs when another signal moved the record first.
func (e *Engine) afterLostRace(ctx context.Context, sig Signal, pending *models.PendingPayment) (Result, error) {
	current, err := e.Pending.GetByGatewayOrderID(ctx, pending.GatewayOrderID)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload pending payment")
	}
	if current.Status == enums.PendingPaymentStatusSuccess {
		return e.replay(ctx, sig, current)
	}
	p := e.pendingParams(sig, current, enums.PaymentLogEventIgnored, enums.PaymentLogStatusFailed, "payment captured after attempt was closed; refund required")
	e.PaymentLog.LogEvent(ctx, p)
	e.Logger.Warn(ctx, "payment.captured_after_terminal")
	if sig.Source == enums.FinalizationSourceCallback {
		return Result{}, pkgerrors.New(pkgerrors.CodeStateConflict, "payment attempt is no longer open")
	}
	return Result{Outcome: OutcomeIgnored}, nil
}

func (e *Engine) replay(ctx context.Context, sig Signal, pending *models.PendingPayment) (Result, error) {
	order, err := e.Orders.FindByGatewayOrderID(ctx, pending.GatewayOrderID)
	if errors.Is(err, orders.ErrNotFound) {
		e.Logger.Warn(ctx, "payment.success_without_order")
		return Result{Outcome: OutcomeReplayed}, nil
	}
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if sig.UserID != nil && *sig.UserID != order.UserID {
		return Result{}, pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to another user")
	}
	id := order.ID
	return Result{Outcome: OutcomeReplayed, OrderID: &id, OrderNumber: order.OrderNumber}, nil
}

func (e *Engine) params(sig Signal, event enums.PaymentLogEvent, status enums.PaymentLogStatus, msg string) paymentlog.Params {
	p := paymentlog.Params{
		CorrelationID: sig.GatewayOrderID,
		EventType:     event,
		Status:        status,
		Message:       msg,
		Payload:       sig.Payload,
		IPAddress:     sig.IPAddress,
		UserAgent:     sig.UserAgent,
	}
	if sig.AmountPaise > 0 {
		amount := sig.AmountPaise
		p.AmountPaise = &amount
	}
	return p
}

func (e *Engine) pendingParams(sig Signal, pending *models.PendingPayment, event enums.PaymentLogEvent, status enums.PaymentLogStatus, msg string) paymentlog.Params {
	p := e.params(sig, event, status, msg)
	id := pending.ID
	p.PendingPaymentID = &id
	if p.AmountPaise == nil {
		amount := pending.AmountPaise
		p.AmountPaise = &amount
	}
	return p
}

func receivedEvent(source enums.FinalizationSource) (enums.PaymentLogEvent, bool) {
	switch source {
	case enums.FinalizationSourceWebhook:
		return enums.PaymentLogEventWebhookReceived, true
	case enums.FinalizationSourceCallback:
		return enums.PaymentLogEventCallbackReceived, true
	}
	return "", false
}

func snapshotLines(items []models.CartSnapshotItem) []catalog.Line {
	lines := make([]catalog.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, catalog.Line{ProductID: item.ProductID, SizeID: item.SizeID, Quantity: item.Quantity})
	}
	return lines
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
