package postgres

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, title, description, created_at, updated_at`

type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO categories (id, title, description) VALUES ($1, $2, $3) RETURNING `+categoryColumns,
		uuid.New(), c.Title, c.Description,
	)
	created, err := scanCategory(row)
	if postgres.IsUniqueViolation(err) {
		return domain.Category{}, app.ErrCategoryExists
	}
	return created, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	catID, err := uuid.Parse(id)
	if err != nil {
		return domain.Category{}, app.ErrCategoryNotFound
	}
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, catID))
	if postgres.IsNoRows(err) {
		return domain.Category{}, app.ErrCategoryNotFound
	}
	return c, err
}

func (r *CategoryRepo) List(ctx context.Context, titlePrefix string) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE title ILIKE $1 || '%' ORDER BY title`,
		titlePrefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Update(ctx context.Context, c domain.Category) (domain.Category, error) {
	catID, err := uuid.Parse(c.ID)
	if err != nil {
		return domain.Category{}, app.ErrCategoryNotFound
	}
	updated, err := scanCategory(r.pool.QueryRow(ctx, `
		UPDATE categories SET title = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+categoryColumns,
		catID, c.Title, c.Description,
	))
	switch {
	case postgres.IsNoRows(err):
		return domain.Category{}, app.ErrCategoryNotFound
	case postgres.IsUniqueViolation(err):
		return domain.Category{}, app.ErrCategoryExists
	}
	return updated, err
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	catID, err := uuid.Parse(id)
	if err != nil {
		return app.ErrCategoryNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, catID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (domain.Category, error) {
	var (
		c  domain.Category
		id uuid.UUID
	)
	if err := row.Scan(&id, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Category{}, err
	}
	c.ID = id.String()
	return c, nil
}
