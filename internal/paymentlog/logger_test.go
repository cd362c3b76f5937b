package paymentlog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/db/dbtest"
	"github.com/leafcart/nursery-backend/pkg/db/models"
	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/pagination"
)

func TestLogEventPersistsSanitizedRow(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	logg := NewLogger(repo, nil)
	ctx := context.Background()

	amount := int64(108000)
	pendingID := uuid.New()
	logg.LogEvent(ctx, Params{
		CorrelationID:    "order_abc",
		EventType:        enums.PaymentLogEventWebhookReceived,
		Status:           enums.PaymentLogStatusPending,
		PendingPaymentID: &pendingID,
		AmountPaise:      &amount,
		Message:          "webhook received",
		Payload:          map[string]any{"apiKey": "secret", "note": strings.Repeat("n", 1000)},
		IPAddress:        "10.0.0.1",
		UserAgent:        "Razorpay-Webhook/v1",
	})

	rows, err := repo.ListByCorrelation(ctx, "order_abc")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, enums.PaymentLogEventWebhookReceived, row.EventType)
	assert.Equal(t, pendingID, *row.PendingPaymentID)
	assert.Equal(t, amount, *row.AmountPaise)
	assert.NotContains(t, row.Payload, "apiKey")
	assert.True(t, strings.HasSuffix(row.Payload["note"].(string), "…[truncated]"))
	assert.Equal(t, "10.0.0.1", *row.IPAddress)
}

func TestLogEventSwallowsWriteFailures(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, conn.Migrator().DropTable(&models.PaymentLog{}))
	logg := NewLogger(NewRepository(conn), nil)

	assert.NotPanics(t, func() {
		logg.LogEvent(context.Background(), Params{CorrelationID: "x", EventType: enums.PaymentLogEventFailed})
	})
}

func TestLogEventTxCommitsWithTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	logg := NewLogger(repo, nil)
	ctx := context.Background()

	err := conn.Transaction(func(tx *gorm.DB) error {
		logg.LogEventTx(ctx, tx, Params{CorrelationID: "order_tx", EventType: enums.PaymentLogEventFinalized, Status: enums.PaymentLogStatusSuccess})
		return tx.Create(&models.Coupon{Code: "AFTERLOG", DiscountType: enums.DiscountTypeFlat, IsActive: true}).Error
	})
	require.NoError(t, err)

	rows, err := repo.ListByCorrelation(ctx, "order_tx")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	var count int64
	require.NoError(t, conn.Model(&models.Coupon{}).Where("code = ?", "AFTERLOG").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLogEventTxFailureKeepsTransactionUsable(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, conn.Migrator().DropTable(&models.PaymentLog{}))
	logg := NewLogger(NewRepository(conn), nil)

	err := conn.Transaction(func(tx *gorm.DB) error {
		logg.LogEventTx(context.Background(), tx, Params{CorrelationID: "order_tx", EventType: enums.PaymentLogEventFinalized})
		return tx.Create(&models.Coupon{Code: "STILLOK", DiscountType: enums.DiscountTypeFlat, IsActive: true}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.Coupon{}).Where("code = ?", "STILLOK").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListAppliesFilterAndCursor(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		event := enums.PaymentLogEventWebhookReceived
		if i%2 == 0 {
			event = enums.PaymentLogEventFinalized
		}
		entry := &models.PaymentLog{
			CorrelationID: "order_list",
			EventType:     event,
			Status:        enums.PaymentLogStatusInfo,
			Message:       "m",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, entry))
	}
	require.NoError(t, repo.Create(ctx, &models.PaymentLog{CorrelationID: "other", EventType: enums.PaymentLogEventFinalized, Status: enums.PaymentLogStatusInfo}))

	finalized := enums.PaymentLogEventFinalized
	page, err := repo.List(ctx, Filter{CorrelationID: "order_list", EventType: &finalized, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].CreatedAt.After(page.Items[1].CreatedAt))
	require.NotEmpty(t, page.NextCursor)

	cursor, err := pagination.ParseCursor(page.NextCursor)
	require.NoError(t, err)
	next, err := repo.List(ctx, Filter{CorrelationID: "order_list", EventType: &finalized, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	assert.Empty(t, next.NextCursor)
	assert.Equal(t, base, next.Items[0].CreatedAt.UTC())
}
