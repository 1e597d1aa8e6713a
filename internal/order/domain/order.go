package domain

import (
	"fmt"
	"time"

	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/money"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var (
	ErrEmptyCart              = apperr.Conflict("EMPTY_CART", "cart is empty")
	ErrInsufficientStock      = apperr.Conflict("INSUFFICIENT_STOCK", "insufficient stock")
	ErrMixedCurrency          = apperr.Validation("MIXED_CURRENCY", "cart holds products priced in different currencies")
	ErrOrderNotFound          = apperr.NotFound("ORDER_NOT_FOUND", "order not found")
	ErrInvalidStateTransition = apperr.Conflict("INVALID_STATE_TRANSITION", "order cannot move to the requested status")
	ErrPaymentInProgress      = apperr.Conflict("PAYMENT_IN_PROGRESS", "order has a pending or completed payment")
	ErrInvalidIdempotencyKey  = apperr.Validation("INVALID_IDEMPOTENCY_KEY", "invalid idempotency key")
	ErrInvalidInput           = apperr.Validation("INVALID_INPUT", "invalid input")
)

// transitions lists every allowed move; anything else is rejected.
var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped},
	StatusShipped: {StatusDelivered},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns ErrInvalidStateTransition unless from may move to to.
func Transition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return ErrInvalidStateTransition.With(fmt.Sprintf("%s -> %s", from, to))
	}
	return nil
}

// ShippingAddress is copied onto the order at placement and never follows
// later edits to the address book.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type Order struct {
	ID              string
	UserID          string
	Status          Status
	Currency        string
	TotalAmount     int64
	ShippingAddress *ShippingAddress
	OrderItems      []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (o Order) Total() money.Money {
	return money.Money{Currency: o.Currency, Amount: o.TotalAmount}
}

type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string
	Name            string
	UnitAmount      int64
	Quantity        int32
	LineTotalAmount int64
}

type PlaceOrderInput struct {
	AddressID      string
	IdempotencyKey string
}
