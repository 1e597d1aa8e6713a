package app

import (
	"context"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/payment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/money"
)

type Tx interface {
	LockOrder(ctx context.Context, orderID string) (orderdomain.Order, error)
	PaymentForOrder(ctx context.Context, orderID string) (domain.Payment, bool, error)
	// SavePayment inserts or overwrites the single payment row of the order.
	SavePayment(ctx context.Context, p domain.Payment) (domain.Payment, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status orderdomain.Status) error
	Enqueue(ctx context.Context, evt events.Event) error
}

type PaymentRepo interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	GetByOrder(ctx context.Context, orderID string) (domain.Payment, error)
}

// Processor submits a charge to the payment provider. A declined charge is a
// Result with Approved false; errors mean the outcome could not be obtained.
type Processor interface {
	Submit(ctx context.Context, c Charge) (Result, error)
}

type Charge struct {
	PaymentID string
	OrderID   string
	Method    string
	Amount    money.Money
}

type Result struct {
	Approved  bool
	Reference string
	Reason    string
}
