package razorpay

import "strings"

// Payment statuses reported by the gateway.
const (
	PaymentStatusCreated    = "created"
	PaymentStatusAuthorized = "authorized"
	PaymentStatusCaptured   = "captured"
	PaymentStatusRefunded   = "refunded"
	PaymentStatusFailed     = "failed"
)

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is a gateway order. Amounts are in paise.
type Order struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity"`
	Amount     int64             `json:"amount"`
	AmountPaid int64             `json:"amount_paid"`
	AmountDue  int64             `json:"amount_due"`
	Currency   string            `json:"currency"`
	Receipt    string            `json:"receipt"`
	Status     string            `json:"status"`
	Attempts   int               `json:"attempts"`
	Notes      map[string]string `json:"notes"`
	CreatedAt  int64             `json:"created_at"`
}

// Payment is one payment attempt against an order. Amounts are in paise.
type Payment struct {
	ID               string  `json:"id"`
	Entity           string  `json:"entity"`
	Amount           int64   `json:"amount"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
	OrderID          string  `json:"order_id"`
	Method           string  `json:"method"`
	Captured         bool    `json:"captured"`
	Email            string  `json:"email"`
	Contact          string  `json:"contact"`
	ErrorCode        *string `json:"error_code"`
	ErrorDescription *string `json:"error_description"`
	CreatedAt        int64   `json:"created_at"`
}

// IsCaptured reports whether funds were captured for the payment.
func (p Payment) IsCaptured() bool {
	return p.Captured || strings.EqualFold(p.Status, PaymentStatusCaptured)
}

// IsFailed reports whether the attempt failed at the gateway.
func (p Payment) IsFailed() bool {
	return strings.EqualFold(p.Status, PaymentStatusFailed)
}

type paymentCollection struct {
	Entity string    `json:"entity"`
	Count  int       `json:"count"`
	Items  []Payment `json:"items"`
}
