package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyPaymentSignature checks the checkout callback signature, an
// HMAC-SHA256 of "orderID|paymentID" keyed with the API secret. Malformed
// hex yields false.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if c == nil {
		return false
	}
	return verifyHMAC(c.keySecret, []byte(orderID+"|"+paymentID), signature)
}

// VerifyWebhookSignature checks X-Razorpay-Signature against the raw body
// using the webhook secret.
func (c *Client) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	if c == nil {
		return false
	}
	return verifyHMAC(c.webhookSecret, rawBody, signature)
}

// Sign computes the hex HMAC-SHA256 of payload; used by tests and tooling to
// produce gateway-compatible signatures.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifyHMAC(secret string, payload []byte, signature string) bool {
	if secret == "" {
		return false
	}
	provided, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(provided) != sha256.Size {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(provided, mac.Sum(nil))
}
