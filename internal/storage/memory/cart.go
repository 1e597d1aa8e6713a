package memory

import (
	"cmp"
	"context"
	"slices"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

type CartRepo struct{ db *DB }

func NewCartRepo(db *DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) WithinTx(ctx context.Context, ref domain.Ref, fn func(tx cartapp.Tx) error) error {
	return r.db.update(func(s *state) error {
		key := ref.Key()
		if _, ok := s.carts[key]; !ok {
			s.carts[key] = map[string]cartLine{}
		}
		return fn(&cartTx{s: s, key: key})
	})
}

func (r *CartRepo) Items(ctx context.Context, ref domain.Ref) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.view(func(s *state) error {
		items = cartItems(s, ref.Key())
		return nil
	})
	return items, err
}

func (r *CartRepo) Clear(ctx context.Context, ref domain.Ref) error {
	return r.db.update(func(s *state) error {
		clearCart(s, ref.Key())
		return nil
	})
}

type cartTx struct {
	s   *state
	key string
}

func (t *cartTx) Slot(ctx context.Context, productID string) (cartapp.Slot, error) {
	p, ok := t.s.products[productID]
	if !ok {
		return cartapp.Slot{}, nil
	}
	return cartapp.Slot{
		ProductExists: true,
		Quantity:      t.s.carts[t.key][productID].quantity,
		Stock:         p.Stock,
	}, nil
}

func (t *cartTx) SetQuantity(ctx context.Context, productID string, quantity int32) error {
	lines := t.s.carts[t.key]
	if quantity == 0 {
		delete(lines, productID)
		return nil
	}
	if _, ok := t.s.products[productID]; !ok {
		return domain.ErrProductNotFound
	}

	line, ok := lines[productID]
	if !ok {
		line.seq = t.s.next()
	}
	line.quantity = quantity
	lines[productID] = line
	return nil
}

func (t *cartTx) Items(ctx context.Context) ([]domain.Item, error) {
	return cartItems(t.s, t.key), nil
}

// cartItems lists lines in insertion order.
func cartItems(s *state, key string) []domain.Item {
	lines := s.carts[key]
	ids := make([]string, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int { return cmp.Compare(lines[a].seq, lines[b].seq) })

	items := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.Item{ProductID: id, Quantity: lines[id].quantity})
	}
	return items
}

func clearCart(s *state, key string) {
	if _, ok := s.carts[key]; ok {
		s.carts[key] = map[string]cartLine{}
	}
}
