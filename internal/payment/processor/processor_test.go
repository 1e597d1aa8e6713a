package processor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCharge() app.Charge {
	return app.Charge{PaymentID: "pay-1", OrderID: "ord-1", Method: "card", Amount: money.New("USD", 1999)}
}

func TestStatic(t *testing.T) {
	res, err := Static{Approve: true}.Submit(context.Background(), testCharge())
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.NotEmpty(t, res.Reference)

	res, err = Static{}.Submit(context.Background(), testCharge())
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Equal(t, "declined", res.Reason)
}

func TestHTTPApproved(t *testing.T) {
	var got chargeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "pay-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chargeResponse{Approved: true, Reference: "ref-42"})
	}))
	defer srv.Close()

	res, err := NewHTTP(srv.URL, srv.Client()).Submit(context.Background(), testCharge())
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Equal(t, "ref-42", res.Reference)
	assert.Equal(t, chargeRequest{PaymentID: "pay-1", OrderID: "ord-1", Method: "card", Amount: 1999, Currency: "USD"}, got)
}

func TestHTTPDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chargeResponse{Approved: false, Reason: "insufficient funds"})
	}))
	defer srv.Close()

	res, err := NewHTTP(srv.URL, srv.Client()).Submit(context.Background(), testCharge())
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Equal(t, "insufficient funds", res.Reason)
}

func TestHTTPServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, srv.Client()).Submit(context.Background(), testCharge())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
