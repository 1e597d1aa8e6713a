package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/idempotency"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/google/uuid"
)

// ErrIdempotencyRace is returned by Tx.SaveIdempotencyKey when a concurrent
// placement with the same key won.
var ErrIdempotencyRace = errors.New("idempotency key claimed concurrently")

const (
	defaultListLimit = 50
	maxListLimit     = 200

	// placeAttempts bounds retries after losing an idempotency race; the
	// second attempt always sees the winner's key.
	placeAttempts = 2
)

type Service struct {
	repo      OrderRepo
	addresses AddressReader
	metrics   *metrics.ShopMetrics
	log       *slog.Logger
	now       func() time.Time
}

func NewService(repo OrderRepo, addresses AddressReader, m *metrics.ShopMetrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:      repo,
		addresses: addresses,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// PlaceOrder turns the user's cart into a PENDING order in one transaction:
// it locks and re-checks every product, snapshots prices, decrements stock,
// clears the cart and records an order.placed event. Any failure leaves
// stock, cart and orders untouched.
//
// A repeated idempotency key returns the order created by the first call.
func (s *Service) PlaceOrder(ctx context.Context, userID string, in domain.PlaceOrderInput) (domain.Order, error) {
	userID = strings.TrimSpace(userID)
	key := strings.TrimSpace(in.IdempotencyKey)
	if userID == "" {
		return domain.Order{}, domain.ErrInvalidInput
	}
	if len(key) > idempotency.MaxLen {
		return domain.Order{}, domain.ErrInvalidIdempotencyKey
	}

	var address *domain.ShippingAddress
	if id := strings.TrimSpace(in.AddressID); id != "" {
		a, err := s.addresses.GetAddress(ctx, userID, id)
		if err != nil {
			return domain.Order{}, err
		}
		address = &a
	}

	var (
		orderID string
		placed  bool
		err     error
	)
	for attempt := 0; attempt < placeAttempts; attempt++ {
		orderID, placed, err = s.placeOnce(ctx, userID, key, address)
		if !errors.Is(err, ErrIdempotencyRace) {
			break
		}
	}
	if err != nil {
		s.metrics.OrderRejected(errorCode(err))
		return domain.Order{}, err
	}

	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if placed {
		s.metrics.OrderPlaced()
		s.log.InfoContext(ctx, "order placed",
			slog.String("order_id", order.ID),
			slog.String("user_id", userID),
			slog.String("total", order.Total().String()),
			slog.Int("items", len(order.OrderItems)),
		)
	}
	return order, nil
}

// placeOnce reports the order id and whether this call created it.
func (s *Service) placeOnce(ctx context.Context, userID, key string, address *domain.ShippingAddress) (string, bool, error) {
	var (
		orderID string
		placed  bool
	)

	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		orderID = uuid.NewString()

		if key != "" {
			existing, found, err := tx.LookupIdempotencyKey(ctx, userID, key)
			if err != nil {
				return err
			}
			if found {
				orderID = existing
				return nil
			}
			if err := tx.SaveIdempotencyKey(ctx, userID, key, orderID); err != nil {
				return err
			}
		}

		lines, err := tx.CartItems(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		ids := make([]string, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ProductID)
		}
		slices.Sort(ids)

		products, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return err
		}

		order := domain.Order{
			ID:              orderID,
			UserID:          userID,
			Status:          domain.StatusPending,
			ShippingAddress: address,
			OrderItems:      make([]domain.OrderItem, 0, len(lines)),
		}

		for _, l := range lines {
			p, ok := products[l.ProductID]
			if !ok {
				return domain.ErrInsufficientStock.With(fmt.Sprintf("product %s is no longer available", l.ProductID))
			}
			if l.Quantity > p.Stock {
				return domain.ErrInsufficientStock.With(fmt.Sprintf("%s (%s): requested %d, available %d", p.Name, p.ID, l.Quantity, p.Stock))
			}
			if order.Currency == "" {
				order.Currency = p.Price.Currency
			} else if p.Price.Currency != order.Currency {
				return domain.ErrMixedCurrency
			}

			line := p.Price.Mul(int64(l.Quantity))
			order.OrderItems = append(order.OrderItems, domain.OrderItem{
				ProductID:       p.ID,
				Name:            p.Name,
				UnitAmount:      p.Price.Amount,
				Quantity:        l.Quantity,
				LineTotalAmount: line.Amount,
			})
			order.TotalAmount += line.Amount
		}

		for _, l := range lines {
			if err := tx.AdjustStock(ctx, l.ProductID, -l.Quantity); err != nil {
				return fmt.Errorf("decrement stock %s: %w", l.ProductID, err)
			}
		}

		if err := tx.ClearCart(ctx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		created, err := tx.InsertOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		placed = true
		return tx.Enqueue(ctx, events.New(events.OrderPlaced, created.ID, map[string]any{
			"user_id":  userID,
			"currency": created.Currency,
			"total":    created.TotalAmount,
			"items":    len(created.OrderItems),
		}))
	})
	if err != nil {
		return "", false, err
	}
	return orderID, placed, nil
}

// Get returns the order when it belongs to userID. Orders of other users are
// reported as not found.
func (s *Service) Get(ctx context.Context, userID, orderID string) (domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, domain.ErrInvalidInput
	}
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.UserID != userID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

// List returns the user's orders, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// ConfirmDelivery moves a SHIPPED order, and its shipment, to DELIVERED.
func (s *Service) ConfirmDelivery(ctx context.Context, userID, orderID string) (domain.Order, error) {
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		o, err := lockOwned(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		if err := domain.Transition(o.Status, domain.StatusDelivered); err != nil {
			return err
		}

		if err := tx.UpdateStatus(ctx, o.ID, domain.StatusDelivered); err != nil {
			return err
		}
		if err := tx.MarkShipmentDelivered(ctx, o.ID, s.now().UTC()); err != nil {
			return err
		}
		return tx.Enqueue(ctx, events.New(events.OrderDelivered, o.ID, nil))
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.Transition(string(domain.StatusDelivered))
	return s.repo.Get(ctx, orderID)
}

// Cancel moves a PENDING order without an active payment to CANCELLED and
// returns every item's quantity to stock.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (domain.Order, error) {
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		o, err := lockOwned(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		if err := domain.Transition(o.Status, domain.StatusCancelled); err != nil {
			return err
		}

		active, err := tx.HasActivePayment(ctx, o.ID)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrPaymentInProgress
		}

		items := slices.Clone(o.OrderItems)
		slices.SortFunc(items, func(a, b domain.OrderItem) int { return strings.Compare(a.ProductID, b.ProductID) })
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		if _, err := tx.LockProducts(ctx, ids); err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("restore stock %s: %w", it.ProductID, err)
			}
		}

		if err := tx.UpdateStatus(ctx, o.ID, domain.StatusCancelled); err != nil {
			return err
		}
		return tx.Enqueue(ctx, events.New(events.OrderCancelled, o.ID, map[string]any{"user_id": o.UserID}))
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.Transition(string(domain.StatusCancelled))
	s.log.InfoContext(ctx, "order cancelled", slog.String("order_id", orderID))
	return s.repo.Get(ctx, orderID)
}

func lockOwned(ctx context.Context, tx Tx, userID, orderID string) (domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, domain.ErrInvalidInput
	}
	o, err := tx.LockOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.UserID != userID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func errorCode(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}
