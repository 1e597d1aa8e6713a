// Package events defines the storefront domain event envelope, the outbox
// contract used to record events inside business transactions, and the
// publishers the relay delivers them through.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	OrderPlaced     = "order.placed"
	OrderPaid       = "order.paid"
	OrderShipped    = "order.shipped"
	OrderDelivered  = "order.delivered"
	OrderCancelled  = "order.cancelled"
	PaymentCreated  = "payment.created"
	PaymentCaptured = "payment.captured"
	PaymentFailed   = "payment.failed"
	ShipmentCreated = "shipment.created"
)

type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	OrderID   string         `json:"order_id"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload,omitempty"`
}

func New(typ, orderID string, payload map[string]any) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      typ,
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

// Record is an outbox row.
type Record struct {
	ID        int64
	Event     Event
	CreatedAt time.Time
	SentAt    *time.Time
}

type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, id int64) error
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}
