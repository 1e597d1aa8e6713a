package postgres

import (
	"context"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	orderpg "github.com/dwikikusuma/storefront/internal/order/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/internal/payment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, order_id, method, amount, currency, status, reference, failure_reason, created_at, updated_at`

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) WithinTx(ctx context.Context, fn func(tx app.Tx) error) error {
	return postgres.ExecTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&paymentTx{tx: tx})
	})
}

func (r *PaymentRepo) GetByOrder(ctx context.Context, orderID string) (domain.Payment, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, oid))
	if postgres.IsNoRows(err) {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return p, err
}

type paymentTx struct {
	tx pgx.Tx
}

func (t *paymentTx) LockOrder(ctx context.Context, orderID string) (orderdomain.Order, error) {
	return orderpg.LockOrder(ctx, t.tx, orderID)
}

func (t *paymentTx) PaymentForOrder(ctx context.Context, orderID string) (domain.Payment, bool, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return domain.Payment{}, false, nil
	}
	p, err := scanPayment(t.tx.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 FOR UPDATE`, oid))
	if postgres.IsNoRows(err) {
		return domain.Payment{}, false, nil
	}
	if err != nil {
		return domain.Payment{}, false, err
	}
	return p, true, nil
}

func (t *paymentTx) SavePayment(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return domain.Payment{}, err
	}
	oid, err := uuid.Parse(p.OrderID)
	if err != nil {
		return domain.Payment{}, orderdomain.ErrOrderNotFound
	}
	return scanPayment(t.tx.QueryRow(ctx, `
		INSERT INTO payments (id, order_id, method, amount, currency, status, reference, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id) DO UPDATE
		SET method = EXCLUDED.method, amount = EXCLUDED.amount, currency = EXCLUDED.currency,
		    status = EXCLUDED.status, reference = EXCLUDED.reference,
		    failure_reason = EXCLUDED.failure_reason, updated_at = now()
		RETURNING `+paymentColumns,
		id, oid, p.Method, p.Amount.Amount, p.Amount.Currency, string(p.Status), p.Reference, p.FailureReason,
	))
}

func (t *paymentTx) UpdateOrderStatus(ctx context.Context, orderID string, status orderdomain.Status) error {
	return orderpg.UpdateOrderStatus(ctx, t.tx, orderID, status)
}

func (t *paymentTx) Enqueue(ctx context.Context, evt events.Event) error {
	return postgres.EnqueueEvent(ctx, t.tx, evt)
}

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var (
		p           domain.Payment
		id, orderID uuid.UUID
		amount      int64
		currency    string
		status      string
	)
	err := row.Scan(&id, &orderID, &p.Method, &amount, &currency, &status, &p.Reference, &p.FailureReason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Payment{}, err
	}
	p.ID = id.String()
	p.OrderID = orderID.String()
	p.Amount = money.Money{Currency: currency, Amount: amount}
	p.Status = domain.Status(status)
	return p, nil
}
