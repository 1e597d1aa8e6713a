package domain

import (
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/money"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

const (
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodEWallet      = "e_wallet"
)

var (
	ErrPaymentNotFound      = apperr.NotFound("PAYMENT_NOT_FOUND", "payment not found")
	ErrPaymentAlreadyExists = apperr.Conflict("PAYMENT_ALREADY_EXISTS", "order already has a pending or completed payment")
	ErrPaymentFailed        = apperr.Upstream("PAYMENT_FAILED", "payment was not approved")
	ErrInvalidMethod        = apperr.Validation("INVALID_PAYMENT_METHOD", "unsupported payment method")
	ErrOutcomeNotRecorded   = apperr.Upstream("PAYMENT_NOT_RECORDED", "payment outcome could not be recorded, retry later")
)

// NormalizeMethod lower-cases method and checks it is supported.
func NormalizeMethod(method string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(method))
	switch m {
	case MethodCard, MethodBankTransfer, MethodEWallet:
		return m, nil
	}
	return "", ErrInvalidMethod.With(method)
}

type Payment struct {
	ID            string
	OrderID       string
	Method        string
	Amount        money.Money
	Status        Status
	Reference     string
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Active reports whether the payment blocks a new attempt.
func (p Payment) Active() bool {
	return p.Status == StatusPending || p.Status == StatusCompleted
}
