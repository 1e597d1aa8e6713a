package memory

import (
	"context"
	"time"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	shipmentapp "github.com/dwikikusuma/storefront/internal/shipment/app"
	"github.com/dwikikusuma/storefront/internal/shipment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
)

type ShipmentRepo struct{ db *DB }

func NewShipmentRepo(db *DB) *ShipmentRepo { return &ShipmentRepo{db: db} }

func (r *ShipmentRepo) WithinTx(ctx context.Context, fn func(tx shipmentapp.Tx) error) error {
	return r.db.update(func(s *state) error {
		return fn(&shipmentTx{s: s, now: r.db.now})
	})
}

func (r *ShipmentRepo) Get(ctx context.Context, orderID string) (domain.Shipment, error) {
	var sh domain.Shipment
	err := r.db.view(func(s *state) error {
		var ok bool
		if sh, ok = s.shipments[orderID]; !ok {
			return domain.ErrShipmentNotFound
		}
		return nil
	})
	return sh, err
}

type shipmentTx struct {
	s   *state
	now func() time.Time
}

func (t *shipmentTx) LockOrder(ctx context.Context, orderID string) (orderdomain.Order, error) {
	return getOrder(t.s, orderID)
}

func (t *shipmentTx) Shipment(ctx context.Context, orderID string) (domain.Shipment, bool, error) {
	sh, ok := t.s.shipments[orderID]
	return sh, ok, nil
}

func (t *shipmentTx) SaveShipment(ctx context.Context, sh domain.Shipment) (domain.Shipment, error) {
	if _, ok := t.s.orders[sh.OrderID]; !ok {
		return domain.Shipment{}, orderdomain.ErrOrderNotFound
	}
	now := t.now()
	if existing, ok := t.s.shipments[sh.OrderID]; ok {
		sh.CreatedAt = existing.CreatedAt
	} else {
		sh.CreatedAt = now
	}
	sh.UpdatedAt = now
	t.s.shipments[sh.OrderID] = sh
	return sh, nil
}

func (t *shipmentTx) UpdateOrderStatus(ctx context.Context, orderID string, status orderdomain.Status) error {
	return updateOrderStatus(t.s, orderID, status, t.now())
}

func (t *shipmentTx) Enqueue(ctx context.Context, evt events.Event) error {
	enqueue(t.s, evt, t.now())
	return nil
}
