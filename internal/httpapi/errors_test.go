package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	paymentdomain "github.com/dwikikusuma/storefront/internal/payment/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatusFromGRPC(t *testing.T) {
	t.Run("InvalidArgument -> 400", func(t *testing.T) {
		err := status.Error(codes.InvalidArgument, "bad")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_ARGUMENT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("NotFound -> 404", func(t *testing.T) {
		err := status.Error(codes.NotFound, "missing")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusNotFound || gotCode != "NOT_FOUND" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("FailedPrecondition -> 409", func(t *testing.T) {
		err := status.Error(codes.FailedPrecondition, "state")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusConflict || gotCode != "CONFLICT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("Unavailable -> 503", func(t *testing.T) {
		err := status.Error(codes.Unavailable, "down")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("DeadlineExceeded -> 503", func(t *testing.T) {
		err := status.Error(codes.DeadlineExceeded, "timeout")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("non-grpc error -> 500", func(t *testing.T) {
		err := errors.New("boom")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusInternalServerError || gotCode != "INTERNAL" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "domain conflict keeps its code",
			err:        fmt.Errorf("place order: %w", orderdomain.ErrInsufficientStock.With("lamp")),
			wantStatus: http.StatusConflict,
			wantCode:   "INSUFFICIENT_STOCK",
			wantMsg:    "insufficient stock: lamp",
		},
		{
			name:       "upstream cause is hidden",
			err:        paymentdomain.ErrPaymentFailed.With("timeout").Wrap(errors.New("dial tcp 10.0.0.7:443")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "PAYMENT_FAILED",
			wantMsg:    "payment was not approved: timeout",
		},
		{
			name:       "unexpected error",
			err:        errors.New("pq: relation does not exist"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantMsg:    "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStatus, body := errorResponse(tt.err)
			if gotStatus != tt.wantStatus || body.Error.Code != tt.wantCode || body.Error.Message != tt.wantMsg {
				t.Fatalf("got (%d, %+v)", gotStatus, body.Error)
			}
		})
	}
}
