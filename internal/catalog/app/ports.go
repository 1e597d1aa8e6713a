package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int32) (domain.Product, error)
}

type CategoryRepo interface {
	Create(ctx context.Context, c domain.Category) (domain.Category, error)
	Get(ctx context.Context, id string) (domain.Category, error)
	List(ctx context.Context, titlePrefix string) ([]domain.Category, error)
	Update(ctx context.Context, c domain.Category) (domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type ReviewRepo interface {
	Create(ctx context.Context, r domain.Review) (domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}
