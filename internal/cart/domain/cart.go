package domain

import (
	"math"
	"strings"

	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/money"
)

var (
	ErrInvalidOwner      = apperr.Validation("INVALID_CART_OWNER", "cart needs exactly one of user or guest session")
	ErrInvalidItem       = apperr.Validation("INVALID_CART_ITEM", "invalid cart item")
	ErrOutOfStock        = apperr.Conflict("OUT_OF_STOCK", "product is out of stock")
	ErrStockLimitReached = apperr.Conflict("STOCK_LIMIT_REACHED", "cart quantity already equals available stock")
	ErrNotInCart         = apperr.NotFound("NOT_IN_CART", "product is not in the cart")
	ErrProductNotFound   = apperr.NotFound("PRODUCT_NOT_FOUND", "product not found")
	ErrMixedCurrency     = apperr.Validation("MIXED_CURRENCY", "cart holds products priced in different currencies")
)

// Ref identifies the owner of a cart: a signed-in user or an anonymous guest session.
type Ref struct {
	UserID  string
	GuestID string
}

func UserRef(userID string) Ref   { return Ref{UserID: userID} }
func GuestRef(guestID string) Ref { return Ref{GuestID: guestID} }

func (r Ref) IsGuest() bool { return r.UserID == "" && r.GuestID != "" }

// Valid reports whether exactly one owner is set.
func (r Ref) Valid() bool {
	u := strings.TrimSpace(r.UserID) != ""
	g := strings.TrimSpace(r.GuestID) != ""
	return u != g
}

// Key is the storage key of the cart, unique across users and guests.
func (r Ref) Key() string {
	if r.UserID != "" {
		return "user:" + r.UserID
	}
	return "guest:" + r.GuestID
}

type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// Line is a cart item joined with the live product row.
type Line struct {
	ProductID string
	Name      string
	Quantity  int32
	Stock     int32
	UnitPrice money.Money
	LineTotal money.Money
}

type View struct {
	Owner    string
	Lines    []Line
	Subtotal money.Money
}

// Normalize rejects blank product ids and sums duplicate lines, keeping
// first-seen order. Sums saturate at math.MaxInt32.
func Normalize(items []Item) ([]Item, error) {
	index := make(map[string]int, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		pid := strings.TrimSpace(it.ProductID)
		if pid == "" || it.Quantity <= 0 {
			return nil, ErrInvalidItem
		}
		if i, ok := index[pid]; ok {
			out[i].Quantity = AddQuantity(out[i].Quantity, it.Quantity)
			continue
		}
		index[pid] = len(out)
		out = append(out, Item{ProductID: pid, Quantity: it.Quantity})
	}
	return out, nil
}

// AddQuantity adds two quantities, saturating at math.MaxInt32.
func AddQuantity(a, b int32) int32 {
	return int32(min(int64(a)+int64(b), math.MaxInt32))
}
