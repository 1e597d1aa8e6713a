package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/shipment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/metrics"
)

type Service struct {
	repo    ShipmentRepo
	metrics *metrics.ShopMetrics
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo ShipmentRepo, m *metrics.ShopMetrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, metrics: m, log: log, now: time.Now}
}

// Prepare opens a PREPARING shipment for a PAID order. Calling it again
// returns the existing shipment.
func (s *Service) Prepare(ctx context.Context, orderID string) (domain.Shipment, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Shipment{}, orderdomain.ErrInvalidInput
	}

	var out domain.Shipment
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}

		existing, found, err := tx.Shipment(ctx, o.ID)
		if err != nil {
			return err
		}
		if found {
			out = existing
			return nil
		}

		if o.Status != orderdomain.StatusPaid {
			return orderdomain.ErrInvalidStateTransition.With(fmt.Sprintf("order is %s, shipment needs %s", o.Status, orderdomain.StatusPaid))
		}

		out, err = tx.SaveShipment(ctx, domain.Shipment{OrderID: o.ID, Status: domain.StatusPreparing})
		if err != nil {
			return err
		}
		return tx.Enqueue(ctx, events.New(events.ShipmentCreated, o.ID, nil))
	})
	if err != nil {
		return domain.Shipment{}, err
	}
	return out, nil
}

// MarkShipped hands a PAID order to the carrier: the shipment becomes SHIPPED
// and so does the order.
func (s *Service) MarkShipped(ctx context.Context, orderID, carrier, tracking string) (domain.Shipment, error) {
	carrier = strings.TrimSpace(carrier)
	tracking = strings.TrimSpace(tracking)
	if carrier == "" || tracking == "" {
		return domain.Shipment{}, domain.ErrInvalidShipment
	}
	if strings.TrimSpace(orderID) == "" {
		return domain.Shipment{}, orderdomain.ErrInvalidInput
	}

	var out domain.Shipment
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := orderdomain.Transition(o.Status, orderdomain.StatusShipped); err != nil {
			return err
		}

		sh, found, err := tx.Shipment(ctx, o.ID)
		if err != nil {
			return err
		}
		if !found {
			sh = domain.Shipment{OrderID: o.ID}
		}

		shippedAt := s.now().UTC()
		sh.Status = domain.StatusShipped
		sh.Carrier = carrier
		sh.TrackingNumber = tracking
		sh.ShippedAt = &shippedAt

		if out, err = tx.SaveShipment(ctx, sh); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, o.ID, orderdomain.StatusShipped); err != nil {
			return err
		}
		return tx.Enqueue(ctx, events.New(events.OrderShipped, o.ID, map[string]any{
			"carrier":         carrier,
			"tracking_number": tracking,
		}))
	})
	if err != nil {
		return domain.Shipment{}, err
	}

	s.metrics.Transition(string(orderdomain.StatusShipped))
	s.log.InfoContext(ctx, "order shipped",
		slog.String("order_id", orderID),
		slog.String("carrier", carrier),
	)
	return out, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (domain.Shipment, error) {
	return s.repo.Get(ctx, orderID)
}
