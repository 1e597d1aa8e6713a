package bootstrap

import (
	"context"
	"testing"

	"github.com/dwikikusuma/storefront/internal/payment/processor"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.StoreMemory

	app, err := Build(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Pool)
	assert.NotNil(t, app.Outbox)
	assert.NotNil(t, app.Handler())
}

func TestBuildUnknownStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "sqlite"

	_, err := Build(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestNewProcessor(t *testing.T) {
	p := newProcessor(config.PaymentConfig{AutoApprove: true})
	assert.Equal(t, processor.Static{Approve: true}, p)

	p = newProcessor(config.PaymentConfig{ProcessorURL: "http://payments.local/charge"})
	h, ok := p.(*processor.HTTP)
	require.True(t, ok)
	assert.Equal(t, "http://payments.local/charge", h.URL)
}

func TestNewPublisher(t *testing.T) {
	log := logger.Discard()

	p, err := NewPublisher(config.EventsConfig{Driver: config.EventsNone}, log)
	require.NoError(t, err)
	assert.IsType(t, events.Noop{}, p)

	p, err = NewPublisher(config.EventsConfig{Driver: config.EventsLog}, log)
	require.NoError(t, err)
	assert.IsType(t, events.LogPublisher{}, p)

	p, err = NewPublisher(config.EventsConfig{Driver: config.EventsKafka, KafkaBrokers: "localhost:9092", KafkaTopic: "t"}, log)
	require.NoError(t, err)
	assert.IsType(t, &events.KafkaPublisher{}, p)
	require.NoError(t, p.Close())

	_, err = NewPublisher(config.EventsConfig{Driver: config.EventsKafka}, log)
	assert.ErrorIs(t, err, events.ErrDisabled)

	_, err = NewPublisher(config.EventsConfig{Driver: "sqs"}, log)
	assert.Error(t, err)
}
