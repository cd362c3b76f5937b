package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafcart/nursery-backend/internal/delivery"
	"github.com/leafcart/nursery-backend/internal/paymentlog"
	"github.com/leafcart/nursery-backend/internal/ratelimit"
	"github.com/leafcart/nursery-backend/pkg/auth"
	"github.com/leafcart/nursery-backend/pkg/config"
	"github.com/leafcart/nursery-backend/pkg/db/dbtest"
	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/logger"
	"github.com/leafcart/nursery-backend/pkg/metrics"
	"github.com/leafcart/nursery-backend/pkg/razorpay"
)

type verifier struct{}

func (verifier) VerifyWebhookSignature(body []byte, signature string) bool {
	return razorpay.Sign("whsec", body) == signature
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "test"},
		JWT:  config.JWTConfig{Secret: "secret", Issuer: "nursery-auth"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"https://shop.example.com"}},
		RateLimit: config.RateLimitConfig{
			CancelLimit: 10, CancelWindow: time.Minute,
			PincodeLimit: 3, PincodeWindow: time.Minute,
			CouponLimit: 20, CouponWindow: time.Minute,
			CheckoutLimit: 10, CheckoutWindow: time.Minute,
		},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	conn := dbtest.Open(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	limiter, err := ratelimit.New(ratelimit.NewMemoryStore(ctx, time.Minute))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	deliverySvc := delivery.NewService(delivery.NewSettingsRepository(conn))
	return NewRouter(Deps{
		Config:           cfg,
		Logger:           logger.Nop(),
		Metrics:          promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Limiter:          limiter,
		RateLimitMetrics: metrics.NewRateLimitMetrics(reg),
		Delivery:         deliverySvc,
		DeliverySettings: deliverySvc,
		PaymentLogs:      paymentlog.NewRepository(conn),
		WebhookVerifier:  verifier{},
	}), cfg
}

func token(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	tok, err := auth.MintAccessToken(cfg.JWT, time.Now(), time.Hour, auth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		Email:  "ops@example.com",
		JTI:    uuid.NewString(),
	})
	require.NoError(t, err)
	return tok
}

func do(h http.Handler, method, target, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(`{}`))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestPublicRoutes(t *testing.T) {
	h, _ := newTestRouter(t)

	resp := do(h, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/delivery/pincode/560001", "").Code)

	resp = do(h, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "NOT_FOUND")
}

func TestWebhookIsNotBehindAuth(t *testing.T) {
	h, _ := newTestRouter(t)
	resp := do(h, http.MethodPost, "/api/v1/webhooks/razorpay", "")
	assert.Equal(t, http.StatusInternalServerError, resp.Code, "reaches the handler, which has no service wired in this test")
}

func TestCustomerRoutesRequireAuth(t *testing.T) {
	h, _ := newTestRouter(t)
	for _, target := range []string{"/api/v1/checkout/razorpay", "/api/v1/checkout/cod", "/api/v1/payments/razorpay/verify", "/api/v1/payments/razorpay/cancel", "/api/v1/coupons/validate"} {
		assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, target, "").Code, target)
	}
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/v1/orders", "").Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	h, cfg := newTestRouter(t)

	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/api/admin/v1/payment-logs", token(t, cfg, enums.RoleCustomer)).Code)

	admin := token(t, cfg, enums.RoleAdmin)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/admin/v1/payment-logs", admin).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/admin/v1/delivery-settings", admin).Code)
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.Equal(t, http.StatusMethodNotAllowed, do(h, method, "/api/admin/v1/payment-logs/"+uuid.NewString(), admin).Code, method)
	}
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodDelete, "/api/admin/v1/payment-logs", admin).Code)
}

func TestPincodeRateLimit(t *testing.T) {
	h, cfg := newTestRouter(t)
	for i := 0; i < cfg.RateLimit.PincodeLimit; i++ {
		require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/delivery/pincode/560001", "").Code)
	}
	resp := do(h, http.MethodGet, "/api/v1/delivery/pincode/560001", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	resp = do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `policy="pincode"`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/delivery/pincode/560001", nil)
	req.Header.Set("X-Forwarded-For", "10.9.9.9")
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code, "a forged forwarding header does not reset the window")
}
