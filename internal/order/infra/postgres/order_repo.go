package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, user_id, status, currency, total_amount, shipping_address, created_at, updated_at`

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func (r *OrderRepo) WithinTx(ctx context.Context, fn func(tx app.Tx) error) error {
	return postgres.ExecTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&orderTx{tx: tx})
	})
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(ctx, r.pool, orderID, false)
}

// ListByUser returns orders newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := loadItems(ctx, r.pool, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].OrderItems = items
	}
	return orders, nil
}

type orderTx struct {
	tx pgx.Tx
}

func (t *orderTx) LookupIdempotencyKey(ctx context.Context, userID, key string) (string, bool, error) {
	var orderID uuid.UUID
	err := t.tx.QueryRow(ctx,
		`SELECT order_id FROM order_idempotency WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key,
	).Scan(&orderID)
	if postgres.IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return orderID.String(), true, nil
}

// SaveIdempotencyKey blocks on a concurrent insert of the same key until that
// transaction ends, then fails with a unique violation if it committed.
func (t *orderTx) SaveIdempotencyKey(ctx context.Context, userID, key, orderID string) error {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx,
		`INSERT INTO order_idempotency (user_id, idempotency_key, order_id) VALUES ($1, $2, $3)`,
		userID, key, oid,
	)
	if postgres.IsUniqueViolation(err) {
		return app.ErrIdempotencyRace
	}
	return err
}

func (t *orderTx) CartItems(ctx context.Context, userID string) ([]app.CartLine, error) {
	var cartID uuid.UUID
	err := t.tx.QueryRow(ctx,
		`SELECT id FROM carts WHERE owner_key = $1 FOR UPDATE`,
		cartdomain.UserRef(userID).Key(),
	).Scan(&cartID)
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := t.tx.Query(ctx, `
		SELECT product_id, quantity FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at, product_id`,
		cartID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []app.CartLine
	for rows.Next() {
		var (
			pid uuid.UUID
			qty int32
		)
		if err := rows.Scan(&pid, &qty); err != nil {
			return nil, err
		}
		lines = append(lines, app.CartLine{ProductID: pid.String(), Quantity: qty})
	}
	return lines, rows.Err()
}

func (t *orderTx) ClearCart(ctx context.Context, userID string) error {
	_, err := t.tx.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE c.id = ci.cart_id AND c.owner_key = $1`,
		cartdomain.UserRef(userID).Key(),
	)
	return err
}

// LockProducts takes row locks one id at a time in the order given, which
// callers keep sorted so concurrent placements never deadlock.
func (t *orderTx) LockProducts(ctx context.Context, productIDs []string) (map[string]app.LockedProduct, error) {
	out := make(map[string]app.LockedProduct, len(productIDs))
	for _, id := range productIDs {
		pid, err := uuid.Parse(id)
		if err != nil {
			continue
		}

		var (
			p        app.LockedProduct
			amount   int64
			currency string
		)
		err = t.tx.QueryRow(ctx,
			`SELECT name, price_amount, currency, stock FROM products WHERE id = $1 FOR UPDATE`,
			pid,
		).Scan(&p.Name, &amount, &currency, &p.Stock)
		if postgres.IsNoRows(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lock product %s: %w", id, err)
		}
		p.ID = id
		p.Price = money.Money{Currency: currency, Amount: amount}
		out[id] = p
	}
	return out, nil
}

func (t *orderTx) AdjustStock(ctx context.Context, productID string, delta int32) error {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil
	}
	_, err = t.tx.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		pid, delta,
	)
	return err
}

func (t *orderTx) InsertOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	oid, err := uuid.Parse(o.ID)
	if err != nil {
		return domain.Order{}, err
	}

	var address []byte
	if o.ShippingAddress != nil {
		if address, err = json.Marshal(o.ShippingAddress); err != nil {
			return domain.Order{}, err
		}
	}

	created, err := scanOrder(t.tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, status, currency, total_amount, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+orderColumns,
		oid, o.UserID, string(o.Status), o.Currency, o.TotalAmount, address,
	))
	if err != nil {
		return domain.Order{}, err
	}

	created.OrderItems = make([]domain.OrderItem, 0, len(o.OrderItems))
	for i, item := range o.OrderItems {
		expected := item.UnitAmount * int64(item.Quantity)
		if item.LineTotalAmount != expected {
			return domain.Order{}, fmt.Errorf("item %d: line total mismatch", i)
		}

		pUUID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("item %d: invalid product UUID: %w", i, err)
		}

		itemID := uuid.New()
		_, err = t.tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, unit_amount, quantity, line_total_amount, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			itemID, oid, pUUID, item.Name, item.UnitAmount, item.Quantity, item.LineTotalAmount, i,
		)
		if err != nil {
			return domain.Order{}, fmt.Errorf("failed to insert item %d: %w", i, err)
		}

		item.ID = itemID.String()
		item.OrderID = created.ID
		created.OrderItems = append(created.OrderItems, item)
	}

	return created, nil
}

func (t *orderTx) LockOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(ctx, t.tx, orderID, true)
}

func (t *orderTx) UpdateStatus(ctx context.Context, orderID string, status domain.Status) error {
	return UpdateOrderStatus(ctx, t.tx, orderID, status)
}

func (t *orderTx) HasActivePayment(ctx context.Context, orderID string) (bool, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return false, domain.ErrOrderNotFound
	}
	var active bool
	err = t.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND status IN ('PENDING', 'COMPLETED'))`,
		oid,
	).Scan(&active)
	return active, err
}

func (t *orderTx) MarkShipmentDelivered(ctx context.Context, orderID string, at time.Time) error {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return domain.ErrOrderNotFound
	}
	_, err = t.tx.Exec(ctx,
		`UPDATE shipments SET status = 'DELIVERED', delivered_at = $2, updated_at = now() WHERE order_id = $1`,
		oid, at,
	)
	return err
}

func (t *orderTx) Enqueue(ctx context.Context, evt events.Event) error {
	return postgres.EnqueueEvent(ctx, t.tx, evt)
}

// LockOrder reads the order under a row lock. Payment and shipment
// transactions use it so every status change on an order is serialized.
func LockOrder(ctx context.Context, tx pgx.Tx, orderID string) (domain.Order, error) {
	return getOrder(ctx, tx, orderID, true)
}

func UpdateOrderStatus(ctx context.Context, tx pgx.Tx, orderID string, status domain.Status) error {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return domain.ErrOrderNotFound
	}
	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		oid, string(status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func getOrder(ctx context.Context, q querier, orderID string, forUpdate bool) (domain.Order, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	o, err := scanOrder(q.QueryRow(ctx, query, oid))
	if postgres.IsNoRows(err) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	o.OrderItems, err = loadItems(ctx, q, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func loadItems(ctx context.Context, q querier, orderID string) ([]domain.OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, name, unit_amount, quantity, line_total_amount
		FROM order_items WHERE order_id = $1
		ORDER BY position`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			it                 domain.OrderItem
			id, oid, productID uuid.UUID
		)
		if err := rows.Scan(&id, &oid, &productID, &it.Name, &it.UnitAmount, &it.Quantity, &it.LineTotalAmount); err != nil {
			return nil, err
		}
		it.ID = id.String()
		it.OrderID = oid.String()
		it.ProductID = productID.String()
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o       domain.Order
		id      uuid.UUID
		status  string
		address []byte
	)
	if err := row.Scan(&id, &o.UserID, &status, &o.Currency, &o.TotalAmount, &address, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return domain.Order{}, err
	}
	o.ID = id.String()
	o.Status = domain.Status(status)
	if len(address) > 0 {
		var a domain.ShippingAddress
		if err := json.Unmarshal(address, &a); err != nil {
			return domain.Order{}, fmt.Errorf("decode shipping address: %w", err)
		}
		o.ShippingAddress = &a
	}
	return o, nil
}
