package app_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/internal/payment/domain"
	"github.com/dwikikusuma/storefront/internal/storage/memory"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type processorFunc func(ctx context.Context, c app.Charge) (app.Result, error)

func (f processorFunc) Submit(ctx context.Context, c app.Charge) (app.Result, error) { return f(ctx, c) }

func approve(ctx context.Context, c app.Charge) (app.Result, error) {
	return app.Result{Approved: true, Reference: "ref-" + c.PaymentID}, nil
}

func seedOrder(t *testing.T, db *memory.DB, id, userID string, total int64) {
	t.Helper()
	err := memory.NewOrderRepo(db).WithinTx(context.Background(), func(tx orderapp.Tx) error {
		_, err := tx.InsertOrder(context.Background(), orderdomain.Order{
			ID:          id,
			UserID:      userID,
			Status:      orderdomain.StatusPending,
			Currency:    "USD",
			TotalAmount: total,
			OrderItems: []orderdomain.OrderItem{
				{ProductID: "p-1", Name: "Lamp", UnitAmount: total, Quantity: 1, LineTotalAmount: total},
			},
		})
		return err
	})
	require.NoError(t, err)
}

func orderStatus(t *testing.T, db *memory.DB, id string) orderdomain.Status {
	t.Helper()
	o, err := memory.NewOrderRepo(db).Get(context.Background(), id)
	require.NoError(t, err)
	return o.Status
}

func eventTypes(db *memory.DB) []string {
	var out []string
	for _, e := range memory.NewOutbox(db).Events() {
		out = append(out, e.Type)
	}
	return out
}

func TestCreatePaymentCompleted(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	seedOrder(t, db, "o-1", "u-1", 2500)

	var charged app.Charge
	svc := app.NewService(memory.NewPaymentRepo(db), processorFunc(func(ctx context.Context, c app.Charge) (app.Result, error) {
		charged = c
		return approve(ctx, c)
	}), time.Second, nil, logger.Discard())

	p, err := svc.CreatePayment(ctx, "u-1", "o-1", "CARD")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, p.Status)
	assert.Equal(t, domain.MethodCard, p.Method)
	assert.Equal(t, money.New("USD", 2500), p.Amount)
	assert.Equal(t, "ref-"+p.ID, p.Reference)
	assert.Equal(t, p.ID, charged.PaymentID)
	assert.Equal(t, orderdomain.StatusPaid, orderStatus(t, db, "o-1"))

	stored, err := svc.GetForOrder(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)

	assert.Equal(t, []string{events.PaymentCreated, events.PaymentCaptured, events.OrderPaid}, eventTypes(db))
}

func TestCreatePaymentNotApproved(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name      string
		processor app.Processor
		timeout   time.Duration
		wantCause error
	}{
		{
			name: "declined",
			processor: processorFunc(func(ctx context.Context, c app.Charge) (app.Result, error) {
				return app.Result{Approved: false, Reason: "insufficient funds"}, nil
			}),
		},
		{
			name: "processor error",
			processor: processorFunc(func(ctx context.Context, c app.Charge) (app.Result, error) {
				return app.Result{}, boom
			}),
			wantCause: boom,
		},
		{
			name: "processor timeout",
			processor: processorFunc(func(ctx context.Context, c app.Charge) (app.Result, error) {
				<-ctx.Done()
				return app.Result{}, ctx.Err()
			}),
			timeout:   20 * time.Millisecond,
			wantCause: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := memory.New()
			seedOrder(t, db, "o-1", "u-1", 900)
			svc := app.NewService(memory.NewPaymentRepo(db), tt.processor, tt.timeout, nil, logger.Discard())

			p, err := svc.CreatePayment(ctx, "u-1", "o-1", domain.MethodEWallet)
			require.ErrorIs(t, err, domain.ErrPaymentFailed)
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}

			assert.Equal(t, domain.StatusFailed, p.Status)
			assert.NotEmpty(t, p.FailureReason)
			assert.Equal(t, orderdomain.StatusPending, orderStatus(t, db, "o-1"))

			stored, err := svc.GetForOrder(ctx, "o-1")
			require.NoError(t, err)
			assert.Equal(t, domain.StatusFailed, stored.Status)
			assert.Equal(t, []string{events.PaymentCreated, events.PaymentFailed}, eventTypes(db))
		})
	}
}

func TestCreatePaymentRetryAfterFailure(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	seedOrder(t, db, "o-1", "u-1", 900)

	var approved atomic.Bool
	svc := app.NewService(memory.NewPaymentRepo(db), processorFunc(func(ctx context.Context, c app.Charge) (app.Result, error) {
		if approved.Load() {
			return approve(ctx, c)
		}
		return app.Result{Reason: "card expired"}, nil
	}), time.Second, nil, logger.Discard())

	first, err := svc.CreatePayment(ctx, "u-1", "o-1", domain.MethodCard)
	require.ErrorIs(t, err, domain.ErrPaymentFailed)
	assert.Contains(t, err.Error(), "card expired")

	approved.Store(true)
	second, err := svc.CreatePayment(ctx, "u-1", "o-1", domain.MethodBankTransfer)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "failed row is reused")
	assert.Equal(t, domain.StatusCompleted, second.Status)
	assert.Equal(t, domain.MethodBankTransfer, second.Method)
	assert.Empty(t, second.FailureReason)
	assert.Equal(t, orderdomain.StatusPaid, orderStatus(t, db, "o-1"))
}

func TestCreatePaymentRejected(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	seedOrder(t, db, "o-pending", "u-1", 500)
	seedOrder(t, db, "o-paid", "u-1", 500)
	seedOrder(t, db, "o-awaiting", "u-1", 500)

	var calls atomic.Int32
	svc := app.NewService(memory.NewPaymentRepo(db), processorFunc(func(ctx context.Context, c app.Charge) (app.Result, error) {
		calls.Add(1)
		return approve(ctx, c)
	}), time.Second, nil, logger.Discard())

	_, err := svc.CreatePayment(ctx, "u-1", "o-paid", domain.MethodCard)
	require.NoError(t, err)
	calls.Store(0)

	err = memory.NewPaymentRepo(db).WithinTx(ctx, func(tx app.Tx) error {
		_, err := tx.SavePayment(ctx, domain.Payment{
			ID:      "pay-1",
			OrderID: "o-awaiting",
			Method:  domain.MethodCard,
			Amount:  money.New("USD", 500),
			Status:  domain.StatusPending,
		})
		return err
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  string
		orderID string
		method  string
		wantErr error
	}{
		{"unknown method", "u-1", "o-pending", "cheque", domain.ErrInvalidMethod},
		{"missing order id", "u-1", "", domain.MethodCard, orderdomain.ErrInvalidInput},
		{"unknown order", "u-1", "o-missing", domain.MethodCard, orderdomain.ErrOrderNotFound},
		{"someone else's order", "u-2", "o-pending", domain.MethodCard, orderdomain.ErrOrderNotFound},
		{"already paid", "u-1", "o-paid", domain.MethodCard, orderdomain.ErrInvalidStateTransition},
		{"payment awaiting processor", "u-1", "o-awaiting", domain.MethodCard, domain.ErrPaymentAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePayment(ctx, tt.userID, tt.orderID, tt.method)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, calls.Load(), "processor is never called for rejected requests")
}

// flakyRepo fails the WithinTx calls whose 1-based index is listed in failOn.
type flakyRepo struct {
	app.PaymentRepo
	calls  atomic.Int32
	failOn map[int32]bool
}

var errTransient = errors.New("transient db error")

func (r *flakyRepo) WithinTx(ctx context.Context, fn func(tx app.Tx) error) error {
	if r.failOn[r.calls.Add(1)] {
		return errTransient
	}
	return r.PaymentRepo.WithinTx(ctx, fn)
}

func TestCreatePaymentSettleFailure(t *testing.T) {
	t.Run("outcome recorded on second attempt", func(t *testing.T) {
		ctx := context.Background()
		db := memory.New()
		seedOrder(t, db, "o-1", "u-1", 700)

		var submits atomic.Int32
		repo := &flakyRepo{PaymentRepo: memory.NewPaymentRepo(db), failOn: map[int32]bool{2: true}}
		svc := app.NewService(repo, processorFunc(func(ctx context.Context, c app.Charge) (app.Result, error) {
			submits.Add(1)
			return approve(ctx, c)
		}), time.Second, nil, logger.Discard())

		p, err := svc.CreatePayment(ctx, "u-1", "o-1", domain.MethodCard)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, p.Status)
		assert.Equal(t, orderdomain.StatusPaid, orderStatus(t, db, "o-1"))
		assert.Equal(t, int32(1), submits.Load())
	})

	t.Run("stuck pending payment is taken over", func(t *testing.T) {
		ctx := context.Background()
		db := memory.New()
		seedOrder(t, db, "o-1", "u-1", 700)

		timeout := 10 * time.Millisecond
		repo := &flakyRepo{PaymentRepo: memory.NewPaymentRepo(db), failOn: map[int32]bool{2: true, 3: true}}
		svc := app.NewService(repo, processorFunc(approve), timeout, nil, logger.Discard())

		_, err := svc.CreatePayment(ctx, "u-1", "o-1", domain.MethodCard)
		require.ErrorIs(t, err, domain.ErrOutcomeNotRecorded)
		assert.ErrorIs(t, err, errTransient)

		stuck, err := svc.GetForOrder(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, stuck.Status)

		_, err = svc.CreatePayment(ctx, "u-1", "o-1", domain.MethodCard)
		require.ErrorIs(t, err, domain.ErrPaymentAlreadyExists, "a fresh pending payment still blocks")

		time.Sleep(3 * timeout)

		p, err := svc.CreatePayment(ctx, "u-1", "o-1", domain.MethodCard)
		require.NoError(t, err)
		assert.Equal(t, stuck.ID, p.ID)
		assert.Equal(t, domain.StatusCompleted, p.Status)
		assert.Equal(t, orderdomain.StatusPaid, orderStatus(t, db, "o-1"))
	})
}
