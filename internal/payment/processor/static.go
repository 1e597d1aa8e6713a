// Package processor holds the payment processors the storefront can be
// configured with.
package processor

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/google/uuid"
)

// Static answers every charge the same way without leaving the process. It
// backs local development and tests.
type Static struct {
	Approve bool
	Reason  string
}

func (s Static) Submit(ctx context.Context, c app.Charge) (app.Result, error) {
	if err := ctx.Err(); err != nil {
		return app.Result{}, err
	}
	if !s.Approve {
		reason := s.Reason
		if reason == "" {
			reason = "declined"
		}
		return app.Result{Approved: false, Reason: reason}, nil
	}
	return app.Result{Approved: true, Reference: "static-" + uuid.NewString()}, nil
}
