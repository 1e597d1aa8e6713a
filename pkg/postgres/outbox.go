package postgres

import (
	"context"
	"encoding/json"

	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnqueueEvent records evt in the outbox as part of tx.
func EnqueueEvent(ctx context.Context, tx pgx.Tx, evt events.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO outbox(event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`,
		evt.EventID, evt.Type, evt.OrderID, data,
	)
	return err
}

type Outbox struct {
	pool *pgxpool.Pool
}

func NewOutbox(pool *pgxpool.Pool) *Outbox {
	return &Outbox{pool: pool}
}

func (o *Outbox) FetchPending(ctx context.Context, limit int) ([]events.Record, error) {
	rows, err := o.pool.Query(ctx,
		`SELECT id, payload, created_at, sent_at FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.Record
	for rows.Next() {
		var (
			rec     events.Record
			payload []byte
		)
		if err := rows.Scan(&rec.ID, &payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &rec.Event); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (o *Outbox) MarkSent(ctx context.Context, id int64) error {
	_, err := o.pool.Exec(ctx, `UPDATE outbox SET sent_at=now() WHERE id=$1`, id)
	return err
}
