package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafcart/nursery-backend/api/middleware"
	internalorders "github.com/leafcart/nursery-backend/internal/orders"
	"github.com/leafcart/nursery-backend/pkg/enums"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

type fakeService struct {
	filter      internalorders.Filter
	userID      uuid.UUID
	orderNumber string
	status      enums.OrderStatus
}

func (f *fakeService) ListForUser(_ context.Context, userID uuid.UUID, filter internalorders.Filter) (*internalorders.SummaryList, error) {
	f.userID = userID
	f.filter = filter
	return &internalorders.SummaryList{Orders: []internalorders.Summary{}}, nil
}

func (f *fakeService) GetForUser(_ context.Context, userID uuid.UUID, orderNumber string) (*internalorders.Detail, error) {
	f.userID = userID
	f.orderNumber = orderNumber
	if orderNumber != "NUR-20261018-ABC123" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return &internalorders.Detail{}, nil
}

func (f *fakeService) AdminList(_ context.Context, filter internalorders.Filter) (*internalorders.SummaryList, error) {
	f.filter = filter
	return &internalorders.SummaryList{Orders: []internalorders.Summary{}}, nil
}

func (f *fakeService) AdminGet(context.Context, uuid.UUID) (*internalorders.Detail, error) {
	return &internalorders.Detail{}, nil
}

func (f *fakeService) UpdateStatus(_ context.Context, _ uuid.UUID, to enums.OrderStatus) (*internalorders.Detail, error) {
	f.status = to
	if to == enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move order from PAID to DELIVERED")
	}
	return &internalorders.Detail{}, nil
}

func router(svc internalorders.Service, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID.String())))
		})
	})
	r.Get("/orders", List(svc, logger.Nop()))
	r.Get("/orders/{orderNumber}", Detail(svc, logger.Nop()))
	r.Get("/admin/orders", AdminList(svc, logger.Nop()))
	r.Get("/admin/orders/{orderId}", AdminDetail(svc, logger.Nop()))
	r.Patch("/admin/orders/{orderId}/status", AdminUpdateStatus(svc, logger.Nop()))
	return r
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
	return resp
}

func TestUserListIgnoresAdminFilters(t *testing.T) {
	svc := &fakeService{}
	userID := uuid.New()
	resp := get(router(svc, userID), "/orders?status=paid&payment_method=COD&q=asha&limit=5")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, userID, svc.userID)
	require.NotNil(t, svc.filter.Status)
	assert.Equal(t, enums.OrderStatusPaid, *svc.filter.Status)
	assert.Nil(t, svc.filter.PaymentMethod)
	assert.Empty(t, svc.filter.Search)
	assert.Equal(t, 5, svc.filter.Limit)
}

func TestUserDetailByOrderNumber(t *testing.T) {
	svc := &fakeService{}
	h := router(svc, uuid.New())

	resp := get(h, "/orders/nur-20261018-abc123")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "NUR-20261018-ABC123", svc.orderNumber)

	resp = get(h, "/orders/NUR-20260101-ZZZZZZ")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminListFilters(t *testing.T) {
	svc := &fakeService{}
	h := router(svc, uuid.New())

	resp := get(h, "/admin/orders?status=SHIPPED&payment_method=cod&q=%20asha%20&from=2026-10-01&to=2026-10-18")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NotNil(t, svc.filter.PaymentMethod)
	assert.Equal(t, enums.PaymentMethodCOD, *svc.filter.PaymentMethod)
	assert.Equal(t, "asha", svc.filter.Search)
	require.NotNil(t, svc.filter.DateFrom)
	require.NotNil(t, svc.filter.DateTo)

	for _, target := range []string{
		"/admin/orders?status=LOST",
		"/admin/orders?payment_method=UPI",
		"/admin/orders?from=2026-10-18&to=2026-10-01",
		"/admin/orders?cursor=@@@",
		"/admin/orders?limit=1000",
	} {
		assert.Equal(t, http.StatusBadRequest, get(h, target).Code, target)
	}
}

func TestAdminUpdateStatus(t *testing.T) {
	svc := &fakeService{}
	h := router(svc, uuid.New())
	id := uuid.New()

	patch := func(body string) *httptest.ResponseRecorder {
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, httptest.NewRequest(http.MethodPatch, "/admin/orders/"+id.String()+"/status", strings.NewReader(body)))
		return resp
	}

	resp := patch(`{"status":"packing"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, enums.OrderStatusPacking, svc.status)

	assert.Equal(t, http.StatusUnprocessableEntity, patch(`{"status":"DELIVERED"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch(`{"status":"LOST"}`).Code)

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/admin/orders/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
