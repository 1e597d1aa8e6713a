package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/wished/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
)

type WishedRepo interface {
	// Add is idempotent and returns the stored item.
	Add(ctx context.Context, userID, productID string) (domain.Item, error)
	// Remove deletes the item if present.
	Remove(ctx context.Context, userID, productID string) error
	// ListByUser returns the user's items, most recently wished first.
	ListByUser(ctx context.Context, userID string) ([]domain.Item, error)
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
