package postgres

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/address/domain"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const addressColumns = `id, user_id, full_name, line1, line2, city, postal_code, country, phone, created_at, updated_at`

type AddressRepo struct {
	pool *pgxpool.Pool
}

func NewAddressRepo(pool *pgxpool.Pool) *AddressRepo {
	return &AddressRepo{pool: pool}
}

func (r *AddressRepo) Create(ctx context.Context, a domain.Address) (domain.Address, error) {
	return scanAddress(r.pool.QueryRow(ctx, `
		INSERT INTO addresses (id, user_id, full_name, line1, line2, city, postal_code, country, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+addressColumns,
		uuid.New(), a.UserID, a.FullName, a.Line1, a.Line2, a.City, a.PostalCode, a.Country, a.Phone,
	))
}

func (r *AddressRepo) Get(ctx context.Context, id string) (domain.Address, error) {
	aid, err := uuid.Parse(id)
	if err != nil {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	a, err := scanAddress(r.pool.QueryRow(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1`, aid))
	if postgres.IsNoRows(err) {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	return a, err
}

func (r *AddressRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AddressRepo) Update(ctx context.Context, a domain.Address) (domain.Address, error) {
	aid, err := uuid.Parse(a.ID)
	if err != nil {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	updated, err := scanAddress(r.pool.QueryRow(ctx, `
		UPDATE addresses
		SET full_name = $2, line1 = $3, line2 = $4, city = $5, postal_code = $6, country = $7,
		    phone = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+addressColumns,
		aid, a.FullName, a.Line1, a.Line2, a.City, a.PostalCode, a.Country, a.Phone,
	))
	if postgres.IsNoRows(err) {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	return updated, err
}

func (r *AddressRepo) Delete(ctx context.Context, id string) error {
	aid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrAddressNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, aid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

func scanAddress(row pgx.Row) (domain.Address, error) {
	var (
		a  domain.Address
		id uuid.UUID
	)
	err := row.Scan(&id, &a.UserID, &a.FullName, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country, &a.Phone, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Address{}, err
	}
	a.ID = id.String()
	return a, nil
}
