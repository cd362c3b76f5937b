// Package checkout prices carts and opens payment attempts: a Razorpay
// order backed by a pending payment, or a cash-on-delivery order.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/internal/catalog"
	"github.com/leafcart/nursery-backend/internal/notifications"
	"github.com/leafcart/nursery-backend/internal/orders"
	"github.com/leafcart/nursery-backend/internal/paymentlog"
	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/money"
	"github.com/leafcart/nursery-backend/pkg/razorpay"
)

// minGatewayAmountPaise is the smallest order Razorpay accepts.
const minGatewayAmountPaise = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gateway interface {
	CreateOrder(ctx context.Context, amountRupees decimal.Decimal, receipt string, notes map[string]string) (*razorpay.Order, error)
	KeyID() string
	Currency() string
}

type pendingStore interface {
	Create(ctx context.Context, pending *models.PendingPayment) error
}

type stockTaker interface {
	Decrement(ctx context.Context, tx *gorm.DB, lines []catalog.Line) ([]catalog.StockLevel, error)
}

type couponRedeemer interface {
	Redeem(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error
}

type paymentLogger interface {
	LogEvent(ctx context.Context, p paymentlog.Params)
}

type dispatcher interface {
	Dispatch(ctx context.Context, events ...notifications.Event)
}

// Service executes checkout orchestration.
type Service interface {
	InitiateRazorpay(ctx context.Context, in Input) (*RazorpayCheckout, error)
	PlaceCOD(ctx context.Context, in Input) (*orders.Detail, error)
}

// Input is a checkout request after authentication and body validation.
type Input struct {
	UserID     uuid.UUID
	Lines      []catalog.Line
	CouponCode string
	Shipping   models.ShippingDetails
	IPAddress  string
	UserAgent  string
}

// RazorpayCheckout carries what the storefront needs to open the gateway
// modal.
type RazorpayCheckout struct {
	PendingPaymentID uuid.UUID `json:"pending_payment_id"`
	GatewayOrderID   string    `json:"gateway_order_id"`
	KeyID            string    `json:"key_id"`
	Currency         string    `json:"currency"`
	AmountPaise      int64     `json:"amount_paise"`
	Totals           Totals    `json:"totals"`
}

// Deps groups the collaborators of the checkout service.
type Deps struct {
	Tx         txRunner
	Pricer     *Pricer
	Gateway    gateway
	Pending    pendingStore
	Orders     orders.Repository
	Stock      stockTaker
	Coupons    couponRedeemer
	PaymentLog paymentLogger
	Notifier   dispatcher
	Logger     *logger.Logger
	AdminEmail string
}

type service struct {
	Deps
	now func() time.Time
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case deps.Pricer == nil:
		return nil, fmt.Errorf("pricer required")
	case deps.Gateway == nil:
		return nil, fmt.Errorf("payment gateway required")
	case deps.Pending == nil:
		return nil, fmt.Errorf("pending payment store required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Stock == nil:
		return nil, fmt.Errorf("stock taker required")
	case deps.Coupons == nil:
		return nil, fmt.Errorf("coupon redeemer required")
	case deps.PaymentLog == nil:
		return nil, fmt.Errorf("payment logger required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	return &service{Deps: deps, now: time.Now}, nil
}

// InitiateRazorpay prices the cart, opens a gateway order and stages a
// pending payment keyed by the gateway order id.
func (s *service) InitiateRazorpay(ctx context.Context, in Input) (*RazorpayCheckout, error) {
	quote, err := s.Pricer.Quote(ctx, QuoteInput{
		UserID:     in.UserID,
		Lines:      in.Lines,
		CouponCode: in.CouponCode,
		Pincode:    in.Shipping.Pincode,
	})
	if err != nil {
		return nil, err
	}
	if quote.TotalPaise < minGatewayAmountPaise {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total is below the online payment minimum")
	}

	pendingID := uuid.New()
	receipt := pendingID.String()
	notes := map[string]string{
		"pending_payment_id": receipt,
		"user_id":            in.UserID.String(),
	}
	gwOrder, err := s.Gateway.CreateOrder(ctx, money.ToRupees(quote.TotalPaise), receipt, notes)
	if err != nil {
		event := enums.PaymentLogEventFailed
		if razorpay.IsTimeout(err) {
			event = enums.PaymentLogEventTimeout
		}
		s.PaymentLog.LogEvent(ctx, paymentlog.Params{
			CorrelationID:    receipt,
			EventType:        event,
			Status:           enums.PaymentLogStatusFailed,
			PendingPaymentID: &pendingID,
			AmountPaise:      &quote.TotalPaise,
			Message:          "gateway order creation failed: " + err.Error(),
			IPAddress:        in.IPAddress,
			UserAgent:        in.UserAgent,
		})
		s.Logger.Error(s.Logger.WithField(ctx, "pending_payment_id", receipt), "checkout.gateway_order_failed", err)
		return nil, err
	}

	pending := &models.PendingPayment{
		ID:             pendingID,
		GatewayOrderID: gwOrder.ID,
		UserID:         in.UserID,
		Cart:           quote.Snapshot(in.Shipping),
		AmountPaise:    quote.TotalPaise,
		Status:         enums.PendingPaymentStatusPending,
	}
	if err := s.Pending.Create(ctx, pending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stage pending payment")
	}

	s.PaymentLog.LogEvent(ctx, paymentlog.Params{
		CorrelationID:    gwOrder.ID,
		EventType:        enums.PaymentLogEventCreated,
		Status:           enums.PaymentLogStatusPending,
		PendingPaymentID: &pendingID,
		AmountPaise:      &quote.TotalPaise,
		Message:          "gateway order created",
		Payload:          gwOrder,
		IPAddress:        in.IPAddress,
		UserAgent:        in.UserAgent,
	})
	ctx = s.Logger.WithCorrelationID(ctx, gwOrder.ID)
	s.Logger.Info(ctx, "checkout.razorpay_initiated")

	return &RazorpayCheckout{
		PendingPaymentID: pendingID,
		GatewayOrderID:   gwOrder.ID,
		KeyID:            s.Gateway.KeyID(),
		Currency:         s.Gateway.Currency(),
		AmountPaise:      quote.TotalPaise,
		Totals:           quote.Totals,
	}, nil
}

// PlaceCOD creates a PENDING cash-on-delivery order, taking stock and
// recording coupon usage in the same transaction.
func (s *service) PlaceCOD(ctx context.Context, in Input) (*orders.Detail, error) {
	quote, err := s.Pricer.Quote(ctx, QuoteInput{
		UserID:     in.UserID,
		Lines:      in.Lines,
		CouponCode: in.CouponCode,
		Pincode:    in.Shipping.Pincode,
	})
	if err != nil {
		return nil, err
	}

	order := orders.NewFromSnapshot(in.UserID, quote.Snapshot(in.Shipping), enums.PaymentMethodCOD, enums.OrderStatusPending, s.now())
	var levels []catalog.StockLevel
	err = s.Tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.Orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		taken, err := s.Stock.Decrement(ctx, tx, snapshotLines(order.Items))
		if err != nil {
			return err
		}
		levels = taken
		if quote.CouponID != nil {
			if err := s.Coupons.Redeem(ctx, tx, *quote.CouponID, in.UserID, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redeem coupon")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.Logger.WithField(ctx, "order_number", order.OrderNumber)
	s.Logger.Info(ctx, "checkout.cod_placed")
	if s.Notifier != nil {
		s.Notifier.Dispatch(ctx, append([]notifications.Event{notifications.OrderConfirmed(order)}, LowStockEvents(s.AdminEmail, levels)...)...)
	}

	detail, err := s.Orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
	}
	view := orders.DetailOf(*detail)
	return &view, nil
}

func snapshotLines(items []models.OrderItem) []catalog.Line {
	lines := make([]catalog.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, catalog.Line{ProductID: item.ProductID, SizeID: item.SizeID, Quantity: item.Quantity})
	}
	return lines
}

// LowStockEvents builds one LOW_STOCK event per item at or below its
// threshold.
func LowStockEvents(adminEmail string, levels []catalog.StockLevel) []notifications.Event {
	var events []notifications.Event
	for _, level := range levels {
		if !level.Low() {
			continue
		}
		events = append(events, notifications.LowStock(adminEmail, level.Item.ProductID, level.Item.SizeID, level.Item.Name, level.Remaining))
	}
	return events
}
