package domain

import (
	"time"

	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/money"
)

var ErrProductNotFound = apperr.NotFound("PRODUCT_NOT_FOUND", "product not found")

type Product struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	Price       money.Money
	Stock       int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Product) InStock() bool { return p.Stock > 0 }

type ProductFilter struct {
	Query      string
	CategoryID string
	Limit      int
	Cursor     string
}
