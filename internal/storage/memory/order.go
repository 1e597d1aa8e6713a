package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	shipmentdomain "github.com/dwikikusuma/storefront/internal/shipment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/google/uuid"
)

type OrderRepo struct{ db *DB }

func NewOrderRepo(db *DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) WithinTx(ctx context.Context, fn func(tx orderapp.Tx) error) error {
	return r.db.update(func(s *state) error {
		return fn(&orderTx{s: s, now: r.db.now})
	})
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (domain.Order, error) {
	var o domain.Order
	err := r.db.view(func(s *state) error {
		var err error
		o, err = getOrder(s, orderID)
		return err
	})
	return o, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	var out []domain.Order
	var seq map[string]int64
	err := r.db.view(func(s *state) error {
		seq = make(map[string]int64)
		for id, o := range s.orders {
			if o.UserID == userID {
				out = append(out, cloneOrder(o))
				seq[id] = s.orderSeq[id]
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(seq[b.ID], seq[a.ID])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type orderTx struct {
	s   *state
	now func() time.Time
}

func idempotencyKey(userID, key string) string { return userID + "\x00" + key }

func (t *orderTx) LookupIdempotencyKey(ctx context.Context, userID, key string) (string, bool, error) {
	id, ok := t.s.idempotency[idempotencyKey(userID, key)]
	return id, ok, nil
}

func (t *orderTx) SaveIdempotencyKey(ctx context.Context, userID, key, orderID string) error {
	k := idempotencyKey(userID, key)
	if _, ok := t.s.idempotency[k]; ok {
		return orderapp.ErrIdempotencyRace
	}
	t.s.idempotency[k] = orderID
	return nil
}

func (t *orderTx) CartItems(ctx context.Context, userID string) ([]orderapp.CartLine, error) {
	items := cartItems(t.s, cartdomain.UserRef(userID).Key())
	lines := make([]orderapp.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, orderapp.CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines, nil
}

func (t *orderTx) ClearCart(ctx context.Context, userID string) error {
	clearCart(t.s, cartdomain.UserRef(userID).Key())
	return nil
}

func (t *orderTx) LockProducts(ctx context.Context, productIDs []string) (map[string]orderapp.LockedProduct, error) {
	out := make(map[string]orderapp.LockedProduct, len(productIDs))
	for _, id := range productIDs {
		p, ok := t.s.products[id]
		if !ok {
			continue
		}
		out[id] = orderapp.LockedProduct{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}
	}
	return out, nil
}

func (t *orderTx) AdjustStock(ctx context.Context, productID string, delta int32) error {
	p, ok := t.s.products[productID]
	if !ok {
		return nil
	}
	if p.Stock+delta < 0 {
		return fmt.Errorf("stock of %s would become %d", productID, p.Stock+delta)
	}
	p.Stock += delta
	p.UpdatedAt = t.now()
	t.s.products[productID] = p
	return nil
}

func (t *orderTx) InsertOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if _, ok := t.s.orders[o.ID]; ok {
		return domain.Order{}, fmt.Errorf("order %s already exists", o.ID)
	}

	o = cloneOrder(o)
	now := t.now()
	o.CreatedAt, o.UpdatedAt = now, now
	for i := range o.OrderItems {
		o.OrderItems[i].ID = uuid.NewString()
		o.OrderItems[i].OrderID = o.ID
	}

	t.s.orders[o.ID] = o
	t.s.orderSeq[o.ID] = t.s.next()
	return cloneOrder(o), nil
}

func (t *orderTx) LockOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(t.s, orderID)
}

func (t *orderTx) UpdateStatus(ctx context.Context, orderID string, status domain.Status) error {
	return updateOrderStatus(t.s, orderID, status, t.now())
}

func (t *orderTx) HasActivePayment(ctx context.Context, orderID string) (bool, error) {
	p, ok := t.s.payments[orderID]
	return ok && p.Active(), nil
}

func (t *orderTx) MarkShipmentDelivered(ctx context.Context, orderID string, at time.Time) error {
	sh, ok := t.s.shipments[orderID]
	if !ok {
		return nil
	}
	sh.Status = shipmentdomain.StatusDelivered
	sh.DeliveredAt = &at
	sh.UpdatedAt = t.now()
	t.s.shipments[orderID] = sh
	return nil
}

func (t *orderTx) Enqueue(ctx context.Context, evt events.Event) error {
	enqueue(t.s, evt, t.now())
	return nil
}

func getOrder(s *state, orderID string) (domain.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func updateOrderStatus(s *state, orderID string, status domain.Status, now time.Time) error {
	o, ok := s.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = now
	s.orders[orderID] = o
	return nil
}
