package postgres

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/wished/domain"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WishedRepo struct {
	pool *pgxpool.Pool
}

func NewWishedRepo(pool *pgxpool.Pool) *WishedRepo {
	return &WishedRepo{pool: pool}
}

func (r *WishedRepo) Add(ctx context.Context, userID, productID string) (domain.Item, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return domain.Item{}, domain.ErrProductNotFound
	}

	var it domain.Item
	err = postgres.ExecTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO wished_items (user_id, product_id) VALUES ($1, $2)
			ON CONFLICT (user_id, product_id) DO NOTHING`,
			userID, pid,
		); err != nil {
			if postgres.IsForeignKeyViolation(err) {
				return domain.ErrProductNotFound
			}
			return err
		}
		return tx.QueryRow(ctx,
			`SELECT created_at FROM wished_items WHERE user_id = $1 AND product_id = $2`,
			userID, pid,
		).Scan(&it.CreatedAt)
	})
	if err != nil {
		return domain.Item{}, err
	}
	it.UserID, it.ProductID = userID, pid.String()
	return it, nil
}

func (r *WishedRepo) Remove(ctx context.Context, userID, productID string) error {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM wished_items WHERE user_id = $1 AND product_id = $2`, userID, pid)
	return err
}

func (r *WishedRepo) ListByUser(ctx context.Context, userID string) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, created_at FROM wished_items
		WHERE user_id = $1
		ORDER BY created_at DESC, product_id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		var (
			it  domain.Item
			pid uuid.UUID
		)
		if err := rows.Scan(&pid, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.UserID, it.ProductID = userID, pid.String()
		out = append(out, it)
	}
	return out, rows.Err()
}
