package razorpaywebhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafcart/nursery-backend/internal/finalization"
	"github.com/leafcart/nursery-backend/internal/paymentlog"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/razorpay"
)

type stubFinalizer struct {
	signals []finalization.Signal
	result  finalization.Result
	err     error
}

func (s *stubFinalizer) Finalize(_ context.Context, sig finalization.Signal) (finalization.Result, error) {
	s.signals = append(s.signals, sig)
	return s.result, s.err
}

type stubLogs struct {
	entries []paymentlog.Params
}

func (s *stubLogs) LogEvent(_ context.Context, p paymentlog.Params) {
	s.entries = append(s.entries, p)
}

func parse(t *testing.T, body string) *razorpay.WebhookEvent {
	t.Helper()
	event, err := razorpay.ParseWebhookEvent([]byte(body))
	require.NoError(t, err)
	return event
}

const capturedBody = `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","amount":108000,"status":"captured","method":"upi","captured":true}}}}`

func TestHandleCapturedFinalizes(t *testing.T) {
	fin := &stubFinalizer{result: finalization.Result{Outcome: finalization.OutcomeFinalized}}
	svc, err := NewService(fin, &stubLogs{}, nil)
	require.NoError(t, err)

	outcome, err := svc.HandleEvent(context.Background(), parse(t, capturedBody), Delivery{EventID: "evt_1", IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, finalization.OutcomeFinalized, outcome)
	require.Len(t, fin.signals, 1)
	sig := fin.signals[0]
	assert.Equal(t, enums.FinalizationSourceWebhook, sig.Source)
	assert.Equal(t, "order_1", sig.GatewayOrderID)
	assert.Equal(t, "pay_1", sig.PaymentID)
	assert.Equal(t, int64(108000), sig.AmountPaise)
	assert.Nil(t, sig.UserID)
}

func TestHandleFatalErrorsAreAcknowledged(t *testing.T) {
	fin := &stubFinalizer{err: pkgerrors.New(pkgerrors.CodeOutOfStock, "out of stock")}
	svc, err := NewService(fin, &stubLogs{}, nil)
	require.NoError(t, err)

	outcome, err := svc.HandleEvent(context.Background(), parse(t, capturedBody), Delivery{})
	require.NoError(t, err)
	assert.Equal(t, finalization.OutcomeIgnored, outcome)
}

func TestHandleTransientErrorsAreReturned(t *testing.T) {
	fin := &stubFinalizer{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("db down"), "finalize payment")}
	svc, err := NewService(fin, &stubLogs{}, nil)
	require.NoError(t, err)

	_, err = svc.HandleEvent(context.Background(), parse(t, capturedBody), Delivery{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestHandlePaymentFailedOnlyLogs(t *testing.T) {
	fin := &stubFinalizer{}
	logs := &stubLogs{}
	svc, err := NewService(fin, logs, nil)
	require.NoError(t, err)

	body := `{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_2","order_id":"order_2","amount":50000,"status":"failed","error_description":"bank declined","card":{"number":"4111"}}}}}`
	outcome, err := svc.HandleEvent(context.Background(), parse(t, body), Delivery{})
	require.NoError(t, err)
	assert.Equal(t, finalization.OutcomeIgnored, outcome)
	assert.Empty(t, fin.signals)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, enums.PaymentLogEventFailed, logs.entries[0].EventType)
	assert.Contains(t, logs.entries[0].Message, "bank declined")
}

func TestHandleEventWithoutOrderIsIgnored(t *testing.T) {
	svc, err := NewService(&stubFinalizer{}, &stubLogs{}, nil)
	require.NoError(t, err)
	outcome, err := svc.HandleEvent(context.Background(), parse(t, `{"event":"refund.created","payload":{}}`), Delivery{})
	require.NoError(t, err)
	assert.Equal(t, finalization.OutcomeIgnored, outcome)
}

type memoryStore struct {
	vals map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) { return m.vals[key], nil }

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.vals[key]; ok {
		return false, nil
	}
	m.vals[key] = value.(string)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string { return "nursery:idempotency:" + scope + ":" + id }

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.vals, k)
	}
	return nil
}

func TestIdempotencyGuard(t *testing.T) {
	ctx := context.Background()
	guard, err := NewIdempotencyGuard(&memoryStore{vals: map[string]string{}}, time.Hour, "razorpay_webhook")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, guard.Delete(ctx, "evt_1"))
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = guard.CheckAndMark(ctx, "")
	assert.Error(t, err)
}
