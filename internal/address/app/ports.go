package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/address/domain"
)

type AddressRepo interface {
	Create(ctx context.Context, a domain.Address) (domain.Address, error)
	Get(ctx context.Context, id string) (domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Update(ctx context.Context, a domain.Address) (domain.Address, error)
	Delete(ctx context.Context, id string) error
}
