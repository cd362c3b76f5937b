package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leafcart/nursery-backend/pkg/config"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/money"
)

const (
	defaultBaseURL              = "https://api.razorpay.com/v1"
	defaultTimeout              = 10 * time.Second
	defaultCurrency             = "INR"
	responseBodyReadLimit int64 = 1024
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
)

// Observer receives the latency and outcome of every gateway call.
type Observer interface {
	ObserveGateway(operation string, duration time.Duration, err error)
}

// Client wraps the Razorpay Orders and Payments APIs.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
	observer      Observer
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithObserver reports call latency, typically to prometheus.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient builds the gateway client from configuration. Every request is
// bounded by cfg.Timeout.
func NewClient(cfg config.RazorpayConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.KeyID) == "" {
		return nil, errKeyIDRequired
	}
	if strings.TrimSpace(cfg.KeySecret) == "" {
		return nil, errKeySecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       defaultBaseURL,
		keyID:         strings.TrimSpace(cfg.KeyID),
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		client.baseURL = strings.TrimSpace(cfg.BaseURL)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// KeyID is the public key id handed to the checkout widget.
func (c *Client) KeyID() string {
	return c.keyID
}

// Currency is the ISO currency code orders are created in.
func (c *Client) Currency() string {
	return c.currency
}

// CreateOrder registers a gateway order for amountRupees. The amount is sent
// to the gateway in paise.
func (c *Client) CreateOrder(ctx context.Context, amountRupees decimal.Decimal, receipt string, notes map[string]string) (*Order, error) {
	amount := money.FromRupees(amountRupees)
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}
	if strings.TrimSpace(receipt) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt is required")
	}

	body := createOrderRequest{
		Amount:   amount,
		Currency: c.currency,
		Receipt:  receipt,
		Notes:    notes,
	}
	var order Order
	if err := c.do(ctx, "create_order", http.MethodPost, "orders", body, &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway returned order without id")
	}
	return &order, nil
}

// FetchPayment looks up a single payment.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	trimmed := strings.TrimSpace(paymentID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	var payment Payment
	if err := c.do(ctx, "fetch_payment", http.MethodGet, "payments/"+url.PathEscape(trimmed), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// FetchOrderPayments lists every payment attempt made against a gateway order.
func (c *Client) FetchOrderPayments(ctx context.Context, orderID string) ([]Payment, error) {
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var collection paymentCollection
	path := fmt.Sprintf("orders/%s/payments", url.PathEscape(trimmed))
	if err := c.do(ctx, "fetch_order_payments", http.MethodGet, path, nil, &collection); err != nil {
		return nil, err
	}
	return collection.Items, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload any, out any) (err error) {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "razorpay client not configured")
	}
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveGateway(operation, time.Since(start), err)
		}
	}()

	var reader io.Reader
	if payload != nil {
		raw, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, marshalErr, "marshal "+operation+" request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+operation+" request")
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gatewayError(operation, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return gatewayError(operation, resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, describeAPIError(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return gatewayError(operation, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

func gatewayError(operation string, status int, cause error) error {
	details := map[string]any{
		"operation": operation,
		"timeout":   isTimeoutCause(cause),
	}
	if status > 0 {
		details["status"] = status
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, operation+" request failed").WithDetails(details)
}

// IsTimeout reports whether err was caused by a gateway timeout or a
// cancelled deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	return isTimeoutCause(err)
}

func isTimeoutCause(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func describeAPIError(raw []byte) string {
	var apiErr struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Code != "" {
		return fmt.Sprintf("%s: %s", apiErr.Error.Code, apiErr.Error.Description)
	}
	return strings.TrimSpace(string(raw))
}
