package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeMethod, status: http.StatusMethodNotAllowed, publicMsg: "method not allowed"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "too many requests", retryable: true, detailsOK: true},
		{code: CodeSignature, status: http.StatusBadRequest, publicMsg: "payment signature invalid"},
		{code: CodeOutOfStock, status: http.StatusConflict, publicMsg: "out of stock", detailsOK: true},
		{code: CodeAmount, status: http.StatusBadRequest, publicMsg: "payment amount mismatch"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestIsCodeFollowsChain(t *testing.T) {
	inner := New(CodeOutOfStock, "Monstera (Large)")
	outer := fmt.Errorf("finalize: %w", inner)
	if !IsCode(outer, CodeOutOfStock) {
		t.Fatalf("expected out of stock code through wrap")
	}
	if IsCode(outer, CodeSignature) {
		t.Fatalf("unexpected signature code")
	}
	if IsCode(stdErrors.New("plain"), CodeInternal) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpReadsSQLiteConstraintFailures(t *testing.T) {
	cause := stdErrors.New("UNIQUE constraint failed: orders.gateway_order_id")
	dump := Dump(Wrap(CodeConflict, cause, "insert order"))
	if dump.Driver != "sqlite" || dump.DBTable != "orders" || dump.DBColumn != "gateway_order_id" {
		t.Fatalf("unexpected dump %+v", dump)
	}
	if dump.Code != CodeConflict || dump.Retryable {
		t.Fatalf("unexpected code metadata %+v", dump)
	}
	fields := dump.Fields()
	if fields["db_table"] != "orders" {
		t.Fatalf("expected db_table field, got %v", fields)
	}
}

func TestDumpMarksRetryableDependencies(t *testing.T) {
	dump := Dump(New(CodeDependency, "gateway timeout"))
	if !dump.Retryable || dump.Driver != "" {
		t.Fatalf("unexpected dump %+v", dump)
	}
	if _, ok := dump.Fields()["db_driver"]; ok {
		t.Fatalf("empty db fields must be omitted")
	}
}
