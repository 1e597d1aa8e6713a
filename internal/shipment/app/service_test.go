package app_test

import (
	"context"
	"testing"

	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/shipment/app"
	"github.com/dwikikusuma/storefront/internal/shipment/domain"
	"github.com/dwikikusuma/storefront/internal/storage/memory"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, db *memory.DB, id string, status orderdomain.Status) {
	t.Helper()
	err := memory.NewOrderRepo(db).WithinTx(context.Background(), func(tx orderapp.Tx) error {
		_, err := tx.InsertOrder(context.Background(), orderdomain.Order{
			ID:          id,
			UserID:      "u-1",
			Status:      status,
			Currency:    "USD",
			TotalAmount: 100,
		})
		return err
	})
	require.NoError(t, err)
}

func TestPrepare(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	seedOrder(t, db, "o-pending", orderdomain.StatusPending)
	seedOrder(t, db, "o-paid", orderdomain.StatusPaid)
	svc := app.NewService(memory.NewShipmentRepo(db), nil, logger.Discard())

	_, err := svc.Prepare(ctx, "o-pending")
	assert.ErrorIs(t, err, orderdomain.ErrInvalidStateTransition)

	_, err = svc.Prepare(ctx, "o-missing")
	assert.ErrorIs(t, err, orderdomain.ErrOrderNotFound)

	sh, err := svc.Prepare(ctx, "o-paid")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, sh.Status)

	again, err := svc.Prepare(ctx, "o-paid")
	require.NoError(t, err)
	assert.Equal(t, sh.CreatedAt, again.CreatedAt)
	assert.Len(t, memory.NewOutbox(db).Events(), 1, "prepared once")
}

func TestMarkShipped(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	seedOrder(t, db, "o-pending", orderdomain.StatusPending)
	seedOrder(t, db, "o-paid", orderdomain.StatusPaid)
	svc := app.NewService(memory.NewShipmentRepo(db), nil, logger.Discard())

	t.Run("carrier and tracking required", func(t *testing.T) {
		_, err := svc.MarkShipped(ctx, "o-paid", " ", "T-1")
		assert.ErrorIs(t, err, domain.ErrInvalidShipment)
		_, err = svc.MarkShipped(ctx, "o-paid", "DHL", "")
		assert.ErrorIs(t, err, domain.ErrInvalidShipment)
	})

	t.Run("unpaid order", func(t *testing.T) {
		_, err := svc.MarkShipped(ctx, "o-pending", "DHL", "T-1")
		assert.ErrorIs(t, err, orderdomain.ErrInvalidStateTransition)
		_, err = svc.Get(ctx, "o-pending")
		assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
	})

	t.Run("paid order", func(t *testing.T) {
		sh, err := svc.MarkShipped(ctx, "o-paid", " DHL ", "T-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusShipped, sh.Status)
		assert.Equal(t, "DHL", sh.Carrier)
		assert.Equal(t, "T-1", sh.TrackingNumber)
		require.NotNil(t, sh.ShippedAt)
		assert.Nil(t, sh.DeliveredAt)

		o, err := memory.NewOrderRepo(db).Get(ctx, "o-paid")
		require.NoError(t, err)
		assert.Equal(t, orderdomain.StatusShipped, o.Status)
	})

	t.Run("shipped twice", func(t *testing.T) {
		_, err := svc.MarkShipped(ctx, "o-paid", "DHL", "T-2")
		assert.ErrorIs(t, err, orderdomain.ErrInvalidStateTransition)

		sh, err := svc.Get(ctx, "o-paid")
		require.NoError(t, err)
		assert.Equal(t, "T-1", sh.TrackingNumber)
	})
}
