package app

import (
	"context"
	"errors"
	"testing"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
)

type fakeRepo struct{}

func (fakeRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) { return p, nil }
func (fakeRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	if id == "missing" {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return domain.Product{ID: id}, nil
}
func (fakeRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error) {
	return nil, "", nil
}
func (fakeRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) { return p, nil }
func (fakeRepo) Delete(ctx context.Context, id string) error                         { return nil }
func (fakeRepo) SetStock(ctx context.Context, id string, stock int32) (domain.Product, error) {
	return domain.Product{ID: id, Stock: stock}, nil
}

type fakeCategories struct{}

func (fakeCategories) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	return c, nil
}
func (fakeCategories) Get(ctx context.Context, id string) (domain.Category, error) {
	if id == "missing" {
		return domain.Category{}, ErrCategoryNotFound
	}
	return domain.Category{ID: id}, nil
}
func (fakeCategories) List(ctx context.Context, prefix string) ([]domain.Category, error) {
	return nil, nil
}
func (fakeCategories) Update(ctx context.Context, c domain.Category) (domain.Category, error) {
	return c, nil
}
func (fakeCategories) Delete(ctx context.Context, id string) error { return nil }

type fakeReviews struct{}

func (fakeReviews) Create(ctx context.Context, r domain.Review) (domain.Review, error) { return r, nil }
func (fakeReviews) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return nil, nil
}

func newTestService() *Service {
	return NewService(fakeRepo{}, fakeCategories{}, fakeReviews{})
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	t.Run("empty name -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: "   ", Price: money.New("IDR", 100)})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("negative amount -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: "Keyboard", Price: money.New("IDR", -1)})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("empty currency -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: "Keyboard", Price: money.New("   ", 100)})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("negative stock -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: "Keyboard", Price: money.New("IDR", 100), Stock: -3})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown category -> not found", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: "Keyboard", Price: money.New("IDR", 100), CategoryID: "missing"})
		if !errors.Is(err, ErrCategoryNotFound) {
			t.Fatalf("expected ErrCategoryNotFound, got %v", err)
		}
	})

	t.Run("valid input is normalized", func(t *testing.T) {
		p, err := svc.CreateProduct(ctx, ProductInput{Name: " Keyboard ", Price: money.New("idr", 100), Stock: 4})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "Keyboard" || p.Price.Currency != "IDR" || p.Stock != 4 {
			t.Fatalf("unexpected product %+v", p)
		}
	})
}

func TestAddReviewValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	t.Run("rating out of range", func(t *testing.T) {
		_, err := svc.AddReview(ctx, "p-1", "u-1", 6, "great")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.AddReview(ctx, "missing", "u-1", 4, "great")
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})
}

func TestSetStockRejectsNegative(t *testing.T) {
	_, err := newTestService().SetStock(context.Background(), "p-1", -1)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
