package razorpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookEventPaymentCaptured(t *testing.T) {
	body := []byte(`{"entity":"event","event":"payment.captured","contains":["payment"],
		"payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_ABC","amount":108000,"status":"captured","captured":true}}},
		"created_at":1767225600}`)
	event, err := ParseWebhookEvent(body)
	require.NoError(t, err)
	assert.True(t, event.IsSuccess())
	assert.Equal(t, "order_ABC", event.GatewayOrderID())
	require.NotNil(t, event.PaymentEntity())
	assert.Equal(t, int64(108000), event.PaymentEntity().Amount)
}

func TestParseWebhookEventOrderOnly(t *testing.T) {
	event, err := ParseWebhookEvent([]byte(`{"event":"order.paid","payload":{"order":{"entity":{"id":"order_Z","amount_paid":500}}}}`))
	require.NoError(t, err)
	assert.Equal(t, "order_Z", event.GatewayOrderID())
	assert.Nil(t, event.PaymentEntity())
}

func TestParseWebhookEventRejectsGarbage(t *testing.T) {
	_, err := ParseWebhookEvent([]byte(`not json`))
	require.Error(t, err)
	_, err = ParseWebhookEvent([]byte(`{"payload":{}}`))
	require.Error(t, err)
}
