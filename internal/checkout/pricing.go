package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/internal/catalog"
	"github.com/leafcart/nursery-backend/internal/coupons"
	"github.com/leafcart/nursery-backend/internal/delivery"
	"github.com/leafcart/nursery-backend/pkg/db/models"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
)

type catalogResolver interface {
	ResolveLines(ctx context.Context, lines []catalog.Line) ([]catalog.Item, error)
}

type couponValidator interface {
	Validate(ctx context.Context, in coupons.Input) (coupons.Result, error)
}

type couponFinder interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type settingsReader interface {
	Settings(ctx context.Context) (models.DeliverySettings, error)
}

// Totals is the price breakdown of a cart, in paise.
type Totals struct {
	SubtotalPaise int64 `json:"subtotal_paise"`
	DiscountPaise int64 `json:"discount_paise"`
	DeliveryPaise int64 `json:"delivery_paise"`
	TotalPaise    int64 `json:"total_paise"`
}

// Quote is a cart priced from the live catalog.
type Quote struct {
	Totals
	Items      []models.CartSnapshotItem
	CouponCode string
	CouponID   *uuid.UUID
}

// Snapshot freezes the quote and shipping details for a pending payment or
// a cash-on-delivery order.
func (q Quote) Snapshot(shipping models.ShippingDetails) models.CartSnapshot {
	return models.CartSnapshot{
		Items:         q.Items,
		CouponCode:    q.CouponCode,
		SubtotalPaise: q.SubtotalPaise,
		DiscountPaise: q.DiscountPaise,
		DeliveryPaise: q.DeliveryPaise,
		TotalPaise:    q.TotalPaise,
		Shipping:      shipping,
	}
}

// CouponPreview answers the coupon validation endpoint.
type CouponPreview struct {
	Valid           bool   `json:"valid"`
	DiscountPaise   int64  `json:"discount_paise"`
	DeliveryPaise   int64  `json:"delivery_charge_paise"`
	FinalTotalPaise int64  `json:"final_total_paise"`
	Message         string `json:"message"`
}

type QuoteInput struct {
	UserID     uuid.UUID
	Lines      []catalog.Line
	CouponCode string
	Pincode    string
}

// Pricer prices carts server-side. Client-supplied prices and totals are
// never consulted.
type Pricer struct {
	catalog  catalogResolver
	coupons  couponValidator
	finder   couponFinder
	settings settingsReader
}

func NewPricer(catalog catalogResolver, validator couponValidator, finder couponFinder, settings settingsReader) *Pricer {
	return &Pricer{catalog: catalog, coupons: validator, finder: finder, settings: settings}
}

// FinalTotal is max(0, subtotal - discount + delivery).
func FinalTotal(subtotal, discount, deliveryCharge int64) int64 {
	total := subtotal - discount + deliveryCharge
	if total < 0 {
		return 0
	}
	return total
}

// Quote prices lines at current catalog prices, rejecting unknown items,
// shortages, undeliverable pincodes and coupons that do not apply.
func (p *Pricer) Quote(ctx context.Context, in QuoteInput) (*Quote, error) {
	if len(in.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	items, err := p.catalog.ResolveLines(ctx, in.Lines)
	if err != nil {
		return nil, err
	}
	settings, err := p.settings.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if in.Pincode != "" && !delivery.Serviceable(in.Pincode, settings) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery is not available for this pincode")
	}

	quote := &Quote{Items: make([]models.CartSnapshotItem, 0, len(items))}
	for i, item := range items {
		qty := in.Lines[i].Quantity
		quote.SubtotalPaise += item.PricePaise * int64(qty)
		quote.Items = append(quote.Items, models.CartSnapshotItem{
			ProductID:      item.ProductID,
			SizeID:         item.SizeID,
			Name:           item.Name,
			SizeLabel:      item.SizeLabel,
			UnitPricePaise: item.PricePaise,
			Quantity:       qty,
			ImageURL:       item.ImageURL,
		})
	}

	if code := coupons.NormalizeCode(in.CouponCode); code != "" {
		userID := in.UserID
		res, err := p.coupons.Validate(ctx, coupons.Input{Code: code, SubtotalPaise: quote.SubtotalPaise, UserID: &userID})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate coupon")
		}
		if !res.Valid {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, res.Message)
		}
		quote.CouponCode = res.Code
		quote.DiscountPaise = res.DiscountPaise
		id := res.Coupon.ID
		quote.CouponID = &id
	}

	quote.DeliveryPaise = delivery.ComputeCharge(quote.SubtotalPaise, settings)
	quote.TotalPaise = FinalTotal(quote.SubtotalPaise, quote.DiscountPaise, quote.DeliveryPaise)
	return quote, nil
}

// Reprice recomputes a snapshot's totals from its frozen unit prices, the
// coupon's current terms and the current delivery settings. Coupon caps
// and windows are not re-checked; the customer already paid with it.
func (p *Pricer) Reprice(ctx context.Context, cart models.CartSnapshot) (Totals, *models.Coupon, error) {
	var totals Totals
	for _, item := range cart.Items {
		if item.Quantity <= 0 || item.UnitPricePaise < 0 {
			return Totals{}, nil, fmt.Errorf("invalid snapshot line %s", item.ProductID)
		}
		totals.SubtotalPaise += item.UnitPricePaise * int64(item.Quantity)
	}

	var coupon *models.Coupon
	if code := strings.TrimSpace(cart.CouponCode); code != "" {
		found, err := p.finder.FindByCode(ctx, coupons.NormalizeCode(code))
		if err != nil {
			return Totals{}, nil, fmt.Errorf("load coupon: %w", err)
		}
		coupon = found
		totals.DiscountPaise = coupons.Discount(coupon, totals.SubtotalPaise)
	}

	settings, err := p.settings.Settings(ctx)
	if err != nil {
		return Totals{}, nil, err
	}
	totals.DeliveryPaise = delivery.ComputeCharge(totals.SubtotalPaise, settings)
	totals.TotalPaise = FinalTotal(totals.SubtotalPaise, totals.DiscountPaise, totals.DeliveryPaise)
	return totals, coupon, nil
}

// PreviewCoupon prices a bare subtotal with an optional coupon. An invalid
// coupon still yields delivery and total without discount.
func (p *Pricer) PreviewCoupon(ctx context.Context, userID *uuid.UUID, code string, subtotalPaise int64) (*CouponPreview, error) {
	if subtotalPaise < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart subtotal must not be negative")
	}
	res, err := p.coupons.Validate(ctx, coupons.Input{Code: code, SubtotalPaise: subtotalPaise, UserID: userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate coupon")
	}
	settings, err := p.settings.Settings(ctx)
	if err != nil {
		return nil, err
	}
	out := &CouponPreview{
		Valid:         res.Valid,
		DiscountPaise: res.DiscountPaise,
		DeliveryPaise: delivery.ComputeCharge(subtotalPaise, settings),
		Message:       res.Message,
	}
	out.FinalTotalPaise = FinalTotal(subtotalPaise, out.DiscountPaise, out.DeliveryPaise)
	return out, nil
}
