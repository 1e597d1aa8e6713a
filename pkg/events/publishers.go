package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"
)

var ErrDisabled = errors.New("events disabled")

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// LogPublisher writes events to a structured logger; the default for local runs.
type LogPublisher struct {
	Log *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, evt Event) error {
	p.Log.InfoContext(ctx, "event",
		slog.String("event_id", evt.EventID),
		slog.String("type", evt.Type),
		slog.String("order_id", evt.OrderID),
		slog.Any("payload", evt.Payload),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }

type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher writes to topic on the comma separated broker list.
// Events are keyed by order id so one order's events stay ordered.
func NewKafkaPublisher(brokersCSV, topic string) (*KafkaPublisher, error) {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, ErrDisabled
	}

	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: data,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

const natsFlushTimeout = 5 * time.Second

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher publishes each event on "<subject>.<event type>".
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("storefront-relay"))
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(p.subject + "." + evt.Type)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, evt.EventID)
	if err := p.conn.PublishMsg(msg); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, natsFlushTimeout)
		defer cancel()
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
