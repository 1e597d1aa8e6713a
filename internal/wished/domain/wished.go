package domain

import (
	"time"

	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/money"
)

var (
	ErrInvalidItem     = apperr.Validation("INVALID_WISHED_ITEM", "user and product are required")
	ErrProductNotFound = apperr.NotFound("PRODUCT_NOT_FOUND", "product not found")
)

// Item marks a product as wished by a user. A user wishes a product at most once.
type Item struct {
	UserID    string
	ProductID string
	CreatedAt time.Time
}

// Entry is a wished product joined with the live catalog row.
type Entry struct {
	ProductID string
	Name      string
	Price     money.Money
	Stock     int32
	WishedAt  time.Time
}

func (e Entry) Available() bool { return e.Stock > 0 }
