package pendingpayments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafcart/nursery-backend/pkg/db"
	"github.com/leafcart/nursery-backend/pkg/db/dbtest"
	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
)

func newPending(gatewayOrderID string) *models.PendingPayment {
	return &models.PendingPayment{
		GatewayOrderID: gatewayOrderID,
		UserID:         uuid.New(),
		AmountPaise:    108000,
		Cart: models.CartSnapshot{
			Items:         []models.CartSnapshotItem{{ProductID: uuid.New(), Name: "Fern", UnitPricePaise: 60000, Quantity: 2}},
			CouponCode:    "SAVE10",
			SubtotalPaise: 120000,
			DiscountPaise: 12000,
			TotalPaise:    108000,
		},
	}
}

func TestCreateAndLookup(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	pending := newPending("order_1")
	require.NoError(t, repo.Create(ctx, pending))
	assert.Equal(t, enums.PendingPaymentStatusPending, pending.Status)

	got, err := repo.GetByGatewayOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)
	assert.Equal(t, "SAVE10", got.Cart.CouponCode)
	require.Len(t, got.Cart.Items, 1)
	assert.Equal(t, 2, got.Cart.Items[0].Quantity)

	_, err = repo.GetByGatewayOrderID(ctx, "order_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := newPending("order_1")
	err = repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "gateway_order_id"))
}

func TestTransitionsOnlyLeavePending(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	pending := newPending("order_2")
	require.NoError(t, repo.Create(ctx, pending))

	ok, err := repo.MarkSucceeded(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkFailed(ctx, pending.ID, "cancelled")
	require.NoError(t, err)
	assert.False(t, ok, "SUCCESS is terminal")

	ok, err = repo.MarkSucceeded(ctx, pending.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByGatewayOrderID(ctx, "order_2")
	require.NoError(t, err)
	assert.Equal(t, enums.PendingPaymentStatusSuccess, got.Status)
	assert.Nil(t, got.FailureReason)
}

func TestListStaleAndCleanup(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	old := newPending("order_old")
	fresh := newPending("order_fresh")
	failed := newPending("order_failed")
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))
	require.NoError(t, repo.Create(ctx, failed))
	_, err := repo.MarkFailed(ctx, failed.ID, "expired")
	require.NoError(t, err)

	backdate := now.Add(-40 * 24 * time.Hour)
	require.NoError(t, conn.Model(&models.PendingPayment{}).
		Where("id IN ?", []uuid.UUID{old.ID, failed.ID}).
		UpdateColumns(map[string]any{"created_at": backdate, "updated_at": backdate}).Error)

	stale, err := repo.ListStale(ctx, now.Add(-15*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "order_old", stale[0].GatewayOrderID)

	removed, err := repo.DeleteOlderThan(ctx, enums.PendingPaymentStatusFailed, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.DeleteOlderThan(ctx, enums.PendingPaymentStatusPending, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.GetByGatewayOrderID(ctx, "order_fresh")
	require.NoError(t, err)
}
