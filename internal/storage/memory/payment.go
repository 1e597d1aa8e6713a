package memory

import (
	"context"
	"time"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/internal/payment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
)

type PaymentRepo struct{ db *DB }

func NewPaymentRepo(db *DB) *PaymentRepo { return &PaymentRepo{db: db} }

func (r *PaymentRepo) WithinTx(ctx context.Context, fn func(tx paymentapp.Tx) error) error {
	return r.db.update(func(s *state) error {
		return fn(&paymentTx{s: s, now: r.db.now})
	})
}

func (r *PaymentRepo) GetByOrder(ctx context.Context, orderID string) (domain.Payment, error) {
	var p domain.Payment
	err := r.db.view(func(s *state) error {
		var ok bool
		if p, ok = s.payments[orderID]; !ok {
			return domain.ErrPaymentNotFound
		}
		return nil
	})
	return p, err
}

type paymentTx struct {
	s   *state
	now func() time.Time
}

func (t *paymentTx) LockOrder(ctx context.Context, orderID string) (orderdomain.Order, error) {
	return getOrder(t.s, orderID)
}

func (t *paymentTx) PaymentForOrder(ctx context.Context, orderID string) (domain.Payment, bool, error) {
	p, ok := t.s.payments[orderID]
	return p, ok, nil
}

func (t *paymentTx) SavePayment(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	if _, ok := t.s.orders[p.OrderID]; !ok {
		return domain.Payment{}, orderdomain.ErrOrderNotFound
	}
	now := t.now()
	if existing, ok := t.s.payments[p.OrderID]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	t.s.payments[p.OrderID] = p
	return p, nil
}

func (t *paymentTx) UpdateOrderStatus(ctx context.Context, orderID string, status orderdomain.Status) error {
	return updateOrderStatus(t.s, orderID, status, t.now())
}

func (t *paymentTx) Enqueue(ctx context.Context, evt events.Event) error {
	enqueue(t.s, evt, t.now())
	return nil
}
