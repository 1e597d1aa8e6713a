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

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func (r *ReviewRepo) Create(ctx context.Context, rv domain.Review) (domain.Review, error) {
	prodID, err := uuid.Parse(rv.ProductID)
	if err != nil {
		return domain.Review{}, domain.ErrProductNotFound
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, product_id, user_id, rating, comment, created_at`,
		uuid.New(), prodID, rv.UserID, rv.Rating, rv.Comment,
	)
	created, err := scanReview(row)
	if postgres.IsUniqueViolation(err) {
		return domain.Review{}, app.ErrReviewExists
	}
	return created, err
}

// ListByProduct returns reviews newest first.
func (r *ReviewRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	prodID, err := uuid.Parse(productID)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews WHERE product_id = $1
		ORDER BY created_at DESC, id`,
		prodID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var (
		rv       domain.Review
		id, prod uuid.UUID
		rating   int16
	)
	if err := row.Scan(&id, &prod, &rv.UserID, &rating, &rv.Comment, &rv.CreatedAt); err != nil {
		return domain.Review{}, err
	}
	rv.ID = id.String()
	rv.ProductID = prod.String()
	rv.Rating = int32(rating)
	return rv, nil
}
