package postgres

import (
	"context"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	orderpg "github.com/dwikikusuma/storefront/internal/order/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/shipment/app"
	"github.com/dwikikusuma/storefront/internal/shipment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shipmentColumns = `order_id, status, carrier, tracking_number, shipped_at, delivered_at, created_at, updated_at`

type ShipmentRepo struct {
	pool *pgxpool.Pool
}

func NewShipmentRepo(pool *pgxpool.Pool) *ShipmentRepo {
	return &ShipmentRepo{pool: pool}
}

func (r *ShipmentRepo) WithinTx(ctx context.Context, fn func(tx app.Tx) error) error {
	return postgres.ExecTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&shipmentTx{tx: tx})
	})
}

func (r *ShipmentRepo) Get(ctx context.Context, orderID string) (domain.Shipment, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return domain.Shipment{}, domain.ErrShipmentNotFound
	}
	sh, err := scanShipment(r.pool.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE order_id = $1`, oid))
	if postgres.IsNoRows(err) {
		return domain.Shipment{}, domain.ErrShipmentNotFound
	}
	return sh, err
}

type shipmentTx struct {
	tx pgx.Tx
}

func (t *shipmentTx) LockOrder(ctx context.Context, orderID string) (orderdomain.Order, error) {
	return orderpg.LockOrder(ctx, t.tx, orderID)
}

func (t *shipmentTx) Shipment(ctx context.Context, orderID string) (domain.Shipment, bool, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return domain.Shipment{}, false, nil
	}
	sh, err := scanShipment(t.tx.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE order_id = $1`, oid))
	if postgres.IsNoRows(err) {
		return domain.Shipment{}, false, nil
	}
	if err != nil {
		return domain.Shipment{}, false, err
	}
	return sh, true, nil
}

func (t *shipmentTx) SaveShipment(ctx context.Context, s domain.Shipment) (domain.Shipment, error) {
	oid, err := uuid.Parse(s.OrderID)
	if err != nil {
		return domain.Shipment{}, orderdomain.ErrOrderNotFound
	}
	return scanShipment(t.tx.QueryRow(ctx, `
		INSERT INTO shipments (order_id, status, carrier, tracking_number, shipped_at, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id) DO UPDATE
		SET status = EXCLUDED.status, carrier = EXCLUDED.carrier,
		    tracking_number = EXCLUDED.tracking_number, shipped_at = EXCLUDED.shipped_at,
		    delivered_at = EXCLUDED.delivered_at, updated_at = now()
		RETURNING `+shipmentColumns,
		oid, string(s.Status), s.Carrier, s.TrackingNumber, s.ShippedAt, s.DeliveredAt,
	))
}

func (t *shipmentTx) UpdateOrderStatus(ctx context.Context, orderID string, status orderdomain.Status) error {
	return orderpg.UpdateOrderStatus(ctx, t.tx, orderID, status)
}

func (t *shipmentTx) Enqueue(ctx context.Context, evt events.Event) error {
	return postgres.EnqueueEvent(ctx, t.tx, evt)
}

func scanShipment(row pgx.Row) (domain.Shipment, error) {
	var (
		sh     domain.Shipment
		oid    uuid.UUID
		status string
	)
	err := row.Scan(&oid, &status, &sh.Carrier, &sh.TrackingNumber, &sh.ShippedAt, &sh.DeliveredAt, &sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		return domain.Shipment{}, err
	}
	sh.OrderID = oid.String()
	sh.Status = domain.Status(status)
	return sh, nil
}
