package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"order_number": "NUR-20260101-ABCDEF"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var body SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "NUR-20260101-ABCDEF", body.Data.(map[string]any)["order_number"])
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{pkgerrors.New(pkgerrors.CodeValidation, "Coupon has expired"), http.StatusBadRequest, "Coupon has expired"},
		{pkgerrors.New(pkgerrors.CodeOutOfStock, "out of stock"), http.StatusConflict, "out of stock"},
		{pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"), http.StatusTooManyRequests, "too many requests"},
		{pkgerrors.New(pkgerrors.CodeMethod, "payment logs are read-only"), http.StatusMethodNotAllowed, "payment logs are read-only"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), nil, w, tc.err)

		var body ErrorEnvelope
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, string(pkgerrors.As(tc.err).Code()), body.Error.Code)
		assert.Equal(t, tc.msg, body.Error.Message)
		if typed := pkgerrors.As(tc.err); typed != nil {
			assert.Equal(t, pkgerrors.MetadataFor(typed.Code()).HTTPStatus, w.Code)
		}
	}
}

func TestWriteErrorIncludesAllowedDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"pincode": "is invalid"})
	WriteError(context.Background(), nil, w, err)

	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.NotNil(t, body.Error.Details)
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
	assert.NotContains(t, body.Error.Message, "connection refused")
	assert.Nil(t, body.Error.Details)
}
