package app

import (
	"context"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/shipment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
)

type Tx interface {
	LockOrder(ctx context.Context, orderID string) (orderdomain.Order, error)
	Shipment(ctx context.Context, orderID string) (domain.Shipment, bool, error)
	SaveShipment(ctx context.Context, s domain.Shipment) (domain.Shipment, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status orderdomain.Status) error
	Enqueue(ctx context.Context, evt events.Event) error
}

type ShipmentRepo interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Get(ctx context.Context, orderID string) (domain.Shipment, error)
}
