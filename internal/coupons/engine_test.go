package coupons

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
)

type fakeStore struct {
	coupons     map[string]*models.Coupon
	redemptions int64
	err         error
}

func (f *fakeStore) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.coupons[code], nil
}

func (f *fakeStore) CountUserRedemptions(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return f.redemptions, nil
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newEngine(coupons ...*models.Coupon) (*Engine, *fakeStore) {
	store := &fakeStore{coupons: map[string]*models.Coupon{}}
	for _, c := range coupons {
		store.coupons[c.Code] = c
	}
	e := NewEngine(store)
	e.now = func() time.Time { return testNow }
	return e, store
}

func save10() *models.Coupon {
	return &models.Coupon{
		ID:           uuid.New(),
		Code:         "SAVE10",
		DiscountType: enums.DiscountTypePercentage,
		Percentage:   decimal.NewFromInt(10),
		IsActive:     true,
	}
}

func TestValidateNormalizesCodeAndAppliesPercentage(t *testing.T) {
	engine, _ := newEngine(save10())

	res, err := engine.Validate(context.Background(), Input{Code: "  save10 ", SubtotalPaise: 120000})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "SAVE10", res.Code)
	assert.Equal(t, int64(12000), res.DiscountPaise)
	assert.Equal(t, MsgApplied, res.Message)
}

func TestValidateRejections(t *testing.T) {
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)
	userID := uuid.New()

	cases := []struct {
		name        string
		mutate      func(c *models.Coupon)
		redemptions int64
		subtotal    int64
		want        string
	}{
		{name: "inactive", mutate: func(c *models.Coupon) { c.IsActive = false }, want: MsgInactive},
		{name: "not started", mutate: func(c *models.Coupon) { c.StartsAt = &future }, want: MsgNotStarted},
		{name: "expired", mutate: func(c *models.Coupon) { c.ExpiresAt = &past }, want: MsgExpired},
		{name: "global cap", mutate: func(c *models.Coupon) { c.UsageLimit = intPtr(5); c.UsedCount = 5 }, want: MsgUsageLimit},
		{name: "per user cap", mutate: func(c *models.Coupon) { c.PerUserLimit = intPtr(1) }, redemptions: 1, want: MsgPerUserLimit},
		{name: "min subtotal", mutate: func(c *models.Coupon) { c.MinSubtotalPaise = 50000 }, subtotal: 49999, want: "Minimum order value of ₹500.00 required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			coupon := save10()
			tc.mutate(coupon)
			engine, store := newEngine(coupon)
			store.redemptions = tc.redemptions
			subtotal := tc.subtotal
			if subtotal == 0 {
				subtotal = 100000
			}

			res, err := engine.Validate(context.Background(), Input{Code: "SAVE10", SubtotalPaise: subtotal, UserID: &userID})
			require.NoError(t, err)
			assert.False(t, res.Valid)
			assert.Zero(t, res.DiscountPaise)
			assert.Equal(t, tc.want, res.Message)
		})
	}
}

func TestValidateUnknownAndEmptyCodes(t *testing.T) {
	engine, _ := newEngine()
	for _, code := range []string{"", "NOPE"} {
		res, err := engine.Validate(context.Background(), Input{Code: code, SubtotalPaise: 1000})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Equal(t, MsgNotFound, res.Message)
	}
}

func TestValidatePropagatesStoreErrors(t *testing.T) {
	engine, store := newEngine()
	store.err = errors.New("db down")
	_, err := engine.Validate(context.Background(), Input{Code: "SAVE10", SubtotalPaise: 1000})
	require.Error(t, err)
}

func TestDiscountBounds(t *testing.T) {
	flat := &models.Coupon{DiscountType: enums.DiscountTypeFlat, FlatAmountPaise: 50000}
	assert.Equal(t, int64(30000), Discount(flat, 30000), "flat capped at subtotal")
	assert.Equal(t, int64(50000), Discount(flat, 80000))

	pct := &models.Coupon{DiscountType: enums.DiscountTypePercentage, Percentage: decimal.NewFromInt(50), MaxDiscountPaise: int64Ptr(20000)}
	assert.Equal(t, int64(20000), Discount(pct, 100000), "percentage capped at max discount")
	assert.Equal(t, int64(5000), Discount(pct, 10000))

	odd := &models.Coupon{DiscountType: enums.DiscountTypePercentage, Percentage: decimal.RequireFromString("12.5")}
	assert.Equal(t, int64(12), Discount(odd, 99), "rounds down")

	negative := &models.Coupon{DiscountType: enums.DiscountTypeFlat, FlatAmountPaise: -10}
	assert.Zero(t, Discount(negative, 1000))
	assert.Zero(t, Discount(flat, 0))
	assert.Zero(t, Discount(nil, 1000))
}
