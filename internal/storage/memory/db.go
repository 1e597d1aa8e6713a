// Package memory is an in-process implementation of every storefront
// repository. A single mutex serializes units of work; each one runs against
// a copy of the state that replaces the original only when it succeeds, so a
// failed operation leaves nothing behind.
package memory

import (
	"maps"
	"slices"
	"sync"
	"time"

	addressdomain "github.com/dwikikusuma/storefront/internal/address/domain"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	paymentdomain "github.com/dwikikusuma/storefront/internal/payment/domain"
	shipmentdomain "github.com/dwikikusuma/storefront/internal/shipment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
)

type DB struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func New() *DB {
	return &DB{state: newState(), now: func() time.Time { return time.Now().UTC() }}
}

type cartLine struct {
	quantity int32
	seq      int64
}

type wishedAt struct {
	at  time.Time
	seq int64
}

type state struct {
	seq int64

	categories map[string]catalogdomain.Category
	products   map[string]catalogdomain.Product
	reviews    map[string]catalogdomain.Review

	// carts maps an owner key to product id to line.
	carts map[string]map[string]cartLine

	addresses map[string]addressdomain.Address

	// wished maps a user id to product id to the time it was wished.
	wished map[string]map[string]wishedAt

	orders      map[string]orderdomain.Order
	orderSeq    map[string]int64
	idempotency map[string]string

	payments  map[string]paymentdomain.Payment
	shipments map[string]shipmentdomain.Shipment

	outbox []events.Record
}

func newState() *state {
	return &state{
		categories:  map[string]catalogdomain.Category{},
		products:    map[string]catalogdomain.Product{},
		reviews:     map[string]catalogdomain.Review{},
		carts:       map[string]map[string]cartLine{},
		addresses:   map[string]addressdomain.Address{},
		wished:      map[string]map[string]wishedAt{},
		orders:      map[string]orderdomain.Order{},
		orderSeq:    map[string]int64{},
		idempotency: map[string]string{},
		payments:    map[string]paymentdomain.Payment{},
		shipments:   map[string]shipmentdomain.Shipment{},
	}
}

// clone copies every container. Stored values are replaced, never mutated in
// place, so copying the containers is enough to isolate the copy.
func (s *state) clone() *state {
	cp := &state{
		seq:         s.seq,
		categories:  maps.Clone(s.categories),
		products:    maps.Clone(s.products),
		reviews:     maps.Clone(s.reviews),
		carts:       make(map[string]map[string]cartLine, len(s.carts)),
		addresses:   maps.Clone(s.addresses),
		wished:      make(map[string]map[string]wishedAt, len(s.wished)),
		orders:      maps.Clone(s.orders),
		orderSeq:    maps.Clone(s.orderSeq),
		idempotency: maps.Clone(s.idempotency),
		payments:    maps.Clone(s.payments),
		shipments:   maps.Clone(s.shipments),
		outbox:      slices.Clone(s.outbox),
	}
	for k, lines := range s.carts {
		cp.carts[k] = maps.Clone(lines)
	}
	for k, items := range s.wished {
		cp.wished[k] = maps.Clone(items)
	}
	return cp
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

// update runs fn on a working copy and publishes it if fn succeeds.
func (db *DB) update(fn func(s *state) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	work := db.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	db.state = work
	return nil
}

func (db *DB) view(fn func(s *state) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.state)
}

func cloneOrder(o orderdomain.Order) orderdomain.Order {
	o.OrderItems = slices.Clone(o.OrderItems)
	if o.ShippingAddress != nil {
		a := *o.ShippingAddress
		o.ShippingAddress = &a
	}
	return o
}
