package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
)

// Slot is the state of one product within a locked cart.
type Slot struct {
	ProductExists bool
	Quantity      int32
	Stock         int32
}

// Tx is a unit of work over a single cart whose row is locked for its duration.
type Tx interface {
	Slot(ctx context.Context, productID string) (Slot, error)
	// SetQuantity writes the quantity of productID; zero removes the line.
	SetQuantity(ctx context.Context, productID string, quantity int32) error
	Items(ctx context.Context) ([]domain.Item, error)
}

type CartRepo interface {
	// WithinTx creates the cart on first use and runs fn with the cart locked.
	WithinTx(ctx context.Context, ref domain.Ref, fn func(tx Tx) error) error
	Items(ctx context.Context, ref domain.Ref) ([]domain.Item, error)
	Clear(ctx context.Context, ref domain.Ref) error
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID    string
	Name  string
	Price money.Money
	Stock int32
}
