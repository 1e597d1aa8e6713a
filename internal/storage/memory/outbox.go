package memory

import (
	"context"
	"time"

	"github.com/dwikikusuma/storefront/pkg/events"
)

type Outbox struct{ db *DB }

func NewOutbox(db *DB) *Outbox { return &Outbox{db: db} }

func (o *Outbox) FetchPending(ctx context.Context, limit int) ([]events.Record, error) {
	var out []events.Record
	err := o.db.view(func(s *state) error {
		for _, rec := range s.outbox {
			if rec.SentAt != nil {
				continue
			}
			out = append(out, rec)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (o *Outbox) MarkSent(ctx context.Context, id int64) error {
	return o.db.update(func(s *state) error {
		for i, rec := range s.outbox {
			if rec.ID == id {
				now := o.db.now()
				rec.SentAt = &now
				s.outbox[i] = rec
				return nil
			}
		}
		return nil
	})
}

// Events returns every recorded event, sent or not, in insertion order.
func (o *Outbox) Events() []events.Event {
	var out []events.Event
	_ = o.db.view(func(s *state) error {
		for _, rec := range s.outbox {
			out = append(out, rec.Event)
		}
		return nil
	})
	return out
}

func enqueue(s *state, evt events.Event, now time.Time) {
	s.outbox = append(s.outbox, events.Record{ID: s.next(), Event: evt, CreatedAt: now})
}
