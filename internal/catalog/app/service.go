package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/money"
)

var (
	ErrInvalidInput     = apperr.Validation("INVALID_INPUT", "invalid input")
	ErrCategoryNotFound = apperr.NotFound("CATEGORY_NOT_FOUND", "category not found")
	ErrCategoryExists   = apperr.Conflict("CATEGORY_EXISTS", "category already exists")
	ErrReviewExists     = apperr.Conflict("REVIEW_EXISTS", "product already reviewed by this user")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ProductInput struct {
	Name        string
	Description string
	CategoryID  string
	Price       money.Money
	Stock       int32
}

type Service struct {
	products   ProductRepo
	categories CategoryRepo
	reviews    ReviewRepo
}

func NewService(products ProductRepo, categories CategoryRepo, reviews ReviewRepo) *Service {
	return &Service{
		products:   products,
		categories: categories,
		reviews:    reviews,
	}
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	p, err := s.productFromInput(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}

	product, err := s.products.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	p, err := s.productFromInput(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt

	return s.products.Update(ctx, p)
}

func (s *Service) productFromInput(ctx context.Context, in ProductInput) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	currency, curErr := money.NormalizeCurrency(in.Price.Currency)

	if name == "" || curErr != nil || in.Price.Amount <= 0 || in.Stock < 0 {
		return domain.Product{}, ErrInvalidInput
	}

	categoryID := strings.TrimSpace(in.CategoryID)
	if categoryID != "" {
		if _, err := s.GetCategory(ctx, categoryID); err != nil {
			return domain.Product{}, err
		}
	}

	return domain.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CategoryID:  categoryID,
		Price:       money.Money{Currency: currency, Amount: in.Price.Amount},
		Stock:       in.Stock,
	}, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.products.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	f.Query = strings.TrimSpace(f.Query)
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	f.Cursor = strings.TrimSpace(f.Cursor)
	return s.products.List(ctx, f)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.products.Delete(ctx, id)
}

// SetStock overwrites the stock level; it is the admin restock path and never
// runs inside an order transaction.
func (s *Service) SetStock(ctx context.Context, id string, stock int32) (domain.Product, error) {
	if strings.TrimSpace(id) == "" || stock < 0 {
		return domain.Product{}, ErrInvalidInput
	}
	return s.products.SetStock(ctx, id, stock)
}

func (s *Service) CreateCategory(ctx context.Context, title, desc string) (domain.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Category{}, ErrInvalidInput
	}
	return s.categories.Create(ctx, domain.Category{Title: title, Description: strings.TrimSpace(desc)})
}

func (s *Service) UpdateCategory(ctx context.Context, id, title, desc string) (domain.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Category{}, ErrInvalidInput
	}
	existing, err := s.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	existing.Title = title
	existing.Description = strings.TrimSpace(desc)
	return s.categories.Update(ctx, existing)
}

func (s *Service) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Category{}, ErrInvalidInput
	}
	return s.categories.Get(ctx, id)
}

// GetCategoryWithProducts returns the category and up to maxListLimit of its products.
func (s *Service) GetCategoryWithProducts(ctx context.Context, id string) (domain.CategoryWithProducts, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return domain.CategoryWithProducts{}, err
	}
	products, _, err := s.products.List(ctx, domain.ProductFilter{CategoryID: c.ID, Limit: maxListLimit})
	if err != nil {
		return domain.CategoryWithProducts{}, err
	}
	return domain.CategoryWithProducts{Category: c, Products: products}, nil
}

func (s *Service) ListCategories(ctx context.Context, titlePrefix string) ([]domain.Category, error) {
	return s.categories.List(ctx, strings.TrimSpace(titlePrefix))
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.categories.Delete(ctx, id)
}

func (s *Service) AddReview(ctx context.Context, productID, userID string, rating int32, comment string) (domain.Review, error) {
	if strings.TrimSpace(userID) == "" || rating < domain.MinRating || rating > domain.MaxRating {
		return domain.Review{}, ErrInvalidInput
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return domain.Review{}, err
	}

	r, err := s.reviews.Create(ctx, domain.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	})
	if errors.Is(err, ErrReviewExists) {
		return domain.Review{}, ErrReviewExists
	}
	return r, err
}

func (s *Service) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(ctx, productID)
}
