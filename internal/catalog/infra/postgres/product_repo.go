package postgres

import (
	"context"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, category_id, name, description, price_amount, currency, stock, created_at, updated_at`

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	categoryID, err := nullableUUID(p.CategoryID)
	if err != nil {
		return domain.Product{}, app.ErrCategoryNotFound
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, category_id, name, description, price_amount, currency, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		uuid.New(), categoryID, p.Name, p.Description, p.Price.Amount, p.Price.Currency, p.Stock,
	)
	return scanProduct(row)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, domain.ErrProductNotFound
	}

	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, prodID)
	product, err := scanProduct(row)
	if postgres.IsNoRows(err) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// List pages by id; the returned cursor is empty on the last page.
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error) {
	var cur *uuid.UUID
	if strings.TrimSpace(f.Cursor) != "" {
		uid, err := uuid.Parse(strings.TrimSpace(f.Cursor))
		if err != nil {
			return nil, "", app.ErrInvalidInput
		}
		cur = &uid
	}
	categoryID, err := nullableUUID(f.CategoryID)
	if err != nil {
		return nil, "", nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1::uuid IS NULL OR id > $1)
		  AND ($2::uuid IS NULL OR category_id = $2)
		  AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
		ORDER BY id
		LIMIT $4`,
		cur, categoryID, f.Query, f.Limit,
	)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, f.Limit)
	var nextCursor string

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, p)
		nextCursor = p.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if len(out) < f.Limit {
		nextCursor = ""
	}

	return out, nextCursor, nil
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	prodID, err := uuid.Parse(p.ID)
	if err != nil {
		return domain.Product{}, domain.ErrProductNotFound
	}
	categoryID, err := nullableUUID(p.CategoryID)
	if err != nil {
		return domain.Product{}, app.ErrCategoryNotFound
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET category_id = $2, name = $3, description = $4, price_amount = $5, currency = $6,
		    stock = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		prodID, categoryID, p.Name, p.Description, p.Price.Amount, p.Price.Currency, p.Stock,
	)
	updated, err := scanProduct(row)
	if postgres.IsNoRows(err) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return updated, err
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrProductNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, prodID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) SetStock(ctx context.Context, id string, stock int32) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, domain.ErrProductNotFound
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1 RETURNING `+productColumns,
		prodID, stock,
	)
	p, err := scanProduct(row)
	if postgres.IsNoRows(err) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p          domain.Product
		id         uuid.UUID
		categoryID *uuid.UUID
		amount     int64
		currency   string
	)
	if err := row.Scan(&id, &categoryID, &p.Name, &p.Description, &amount, &currency, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Product{}, err
	}
	p.ID = id.String()
	if categoryID != nil {
		p.CategoryID = categoryID.String()
	}
	p.Price = money.Money{Currency: currency, Amount: amount}
	return p, nil
}

func nullableUUID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
