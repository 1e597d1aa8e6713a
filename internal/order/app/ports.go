package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/money"
)

type CartLine struct {
	ProductID string
	Quantity  int32
}

// LockedProduct is a product row held under a write lock for the rest of the transaction.
type LockedProduct struct {
	ID    string
	Name  string
	Price money.Money
	Stock int32
}

type Tx interface {
	LookupIdempotencyKey(ctx context.Context, userID, key string) (orderID string, found bool, err error)
	// SaveIdempotencyKey returns ErrIdempotencyRace when another transaction
	// claimed the key first.
	SaveIdempotencyKey(ctx context.Context, userID, key, orderID string) error

	CartItems(ctx context.Context, userID string) ([]CartLine, error)
	ClearCart(ctx context.Context, userID string) error

	// LockProducts locks the given rows in ascending id order. Missing products
	// are absent from the result.
	LockProducts(ctx context.Context, productIDs []string) (map[string]LockedProduct, error)
	// AdjustStock adds delta to the product's stock. Adjusting a deleted
	// product is a no-op.
	AdjustStock(ctx context.Context, productID string, delta int32) error

	InsertOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	LockOrder(ctx context.Context, orderID string) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) error

	// HasActivePayment reports whether a PENDING or COMPLETED payment exists.
	HasActivePayment(ctx context.Context, orderID string) (bool, error)
	MarkShipmentDelivered(ctx context.Context, orderID string, at time.Time) error

	Enqueue(ctx context.Context, evt events.Event) error
}

type OrderRepo interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Get(ctx context.Context, orderID string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error)
}

type AddressReader interface {
	GetAddress(ctx context.Context, userID, addressID string) (domain.ShippingAddress, error)
}
