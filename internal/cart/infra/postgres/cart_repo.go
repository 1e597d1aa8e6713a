package postgres

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepo struct {
	pool *pgxpool.Pool
}

func NewCartRepo(pool *pgxpool.Pool) *CartRepo {
	return &CartRepo{pool: pool}
}

// WithinTx upserts the cart row, which both creates it on first use and holds
// its row lock until the transaction ends. Concurrent first adds for the same
// owner converge on one cart through the owner_key unique constraint.
func (r *CartRepo) WithinTx(ctx context.Context, ref domain.Ref, fn func(tx app.Tx) error) error {
	return postgres.ExecTx(ctx, r.pool, func(tx pgx.Tx) error {
		var cartID uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO carts (id, owner_key) VALUES ($1, $2)
			ON CONFLICT (owner_key) DO UPDATE SET updated_at = now()
			RETURNING id`,
			uuid.New(), ref.Key(),
		).Scan(&cartID)
		if err != nil {
			return err
		}
		return fn(&cartTx{tx: tx, cartID: cartID})
	})
}

func (r *CartRepo) Items(ctx context.Context, ref domain.Ref) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ci.product_id, ci.quantity
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.owner_key = $1
		ORDER BY ci.created_at, ci.product_id`,
		ref.Key(),
	)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func (r *CartRepo) Clear(ctx context.Context, ref domain.Ref) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE c.id = ci.cart_id AND c.owner_key = $1`,
		ref.Key(),
	)
	return err
}

type cartTx struct {
	tx     pgx.Tx
	cartID uuid.UUID
}

func (t *cartTx) Slot(ctx context.Context, productID string) (app.Slot, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return app.Slot{}, nil
	}

	var slot app.Slot
	err = t.tx.QueryRow(ctx, `
		SELECT p.stock, COALESCE(ci.quantity, 0)
		FROM products p
		LEFT JOIN cart_items ci ON ci.product_id = p.id AND ci.cart_id = $1
		WHERE p.id = $2`,
		t.cartID, pid,
	).Scan(&slot.Stock, &slot.Quantity)
	if postgres.IsNoRows(err) {
		return app.Slot{}, nil
	}
	if err != nil {
		return app.Slot{}, err
	}
	slot.ProductExists = true
	return slot, nil
}

func (t *cartTx) SetQuantity(ctx context.Context, productID string, quantity int32) error {
	pid, err := uuid.Parse(productID)
	if err != nil {
		if quantity == 0 {
			return nil
		}
		return domain.ErrProductNotFound
	}

	if quantity == 0 {
		_, err = t.tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, t.cartID, pid)
		return err
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
		t.cartID, pid, quantity,
	)
	return err
}

func (t *cartTx) Items(ctx context.Context) ([]domain.Item, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT product_id, quantity FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at, product_id`,
		t.cartID,
	)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]domain.Item, error) {
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var (
			pid uuid.UUID
			qty int32
		)
		if err := rows.Scan(&pid, &qty); err != nil {
			return nil, err
		}
		items = append(items, domain.Item{ProductID: pid.String(), Quantity: qty})
	}
	return items, rows.Err()
}
