package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Relay moves outbox records to a Publisher. Records are marked sent only
// after a successful publish, so delivery is at-least-once.
type Relay struct {
	outbox    Outbox
	publisher Publisher
	batchSize int
	log       *slog.Logger
}

func NewRelay(outbox Outbox, publisher Publisher, batchSize int, log *slog.Logger) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if log == nil {
		log = slog.Default()
	}
	return &Relay{outbox: outbox, publisher: publisher, batchSize: batchSize, log: log}
}

// RunOnce publishes one batch and reports how many records were sent.
// It stops at the first publish failure so ordering per batch is preserved.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	records, err := r.outbox.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch pending: %w", err)
	}

	sent := 0
	for _, rec := range records {
		if err := r.publisher.Publish(ctx, rec.Event); err != nil {
			return sent, fmt.Errorf("publish %s (%s): %w", rec.Event.EventID, rec.Event.Type, err)
		}
		if err := r.outbox.MarkSent(ctx, rec.ID); err != nil {
			return sent, fmt.Errorf("mark sent %d: %w", rec.ID, err)
		}
		sent++
	}
	return sent, nil
}

func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := r.RunOnce(ctx)
		if err != nil {
			r.log.Warn("outbox relay failed", slog.Any("err", err), slog.Int("sent", n))
		} else if n > 0 {
			r.log.Debug("outbox relay sent", slog.Int("sent", n))
		}

		// drain without waiting while full batches keep coming
		if err == nil && n == r.batchSize {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
