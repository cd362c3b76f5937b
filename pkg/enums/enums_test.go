package enums

import "testing"

func TestParseIsCaseInsensitive(t *testing.T) {
	status, err := ParseOrderStatus(" packing ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusPacking {
		t.Fatalf("expected PACKING, got %s", status)
	}
	if _, err := ParseOrderStatus("LOST"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := ParsePaymentMethod("cod"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPaid, OrderStatusPacking, true},
		{OrderStatusPacking, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusPacking, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPaid, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusPaid, OrderStatusDelivered, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.ok {
			t.Fatalf("%s -> %s expected %v got %v", tt.from, tt.to, tt.ok, got)
		}
	}
}

func TestPendingPaymentStatusTerminal(t *testing.T) {
	if PendingPaymentStatusPending.IsTerminal() {
		t.Fatal("PENDING is not terminal")
	}
	if !PendingPaymentStatusSuccess.IsTerminal() || !PendingPaymentStatusFailed.IsTerminal() {
		t.Fatal("SUCCESS and FAILED are terminal")
	}
	if PendingPaymentStatus("UNKNOWN").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}
