package memory

import (
	"context"
	"slices"
	"strings"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/google/uuid"
)

type ProductRepo struct{ db *DB }

func NewProductRepo(db *DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	err := r.db.update(func(s *state) error {
		if p.CategoryID != "" {
			if _, ok := s.categories[p.CategoryID]; !ok {
				return catalogapp.ErrCategoryNotFound
			}
		}
		now := r.db.now()
		p.ID = uuid.NewString()
		p.CreatedAt, p.UpdatedAt = now, now
		s.products[p.ID] = p
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.view(func(s *state) error {
		var ok bool
		if p, ok = s.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		return nil
	})
	return p, err
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error) {
	var out []domain.Product
	err := r.db.view(func(s *state) error {
		q := strings.ToLower(f.Query)
		for _, p := range s.products {
			if f.Cursor != "" && p.ID <= f.Cursor {
				continue
			}
			if f.CategoryID != "" && p.CategoryID != f.CategoryID {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	slices.SortFunc(out, func(a, b domain.Product) int { return strings.Compare(a.ID, b.ID) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	var next string
	if f.Limit > 0 && len(out) == f.Limit {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	err := r.db.update(func(s *state) error {
		existing, ok := s.products[p.ID]
		if !ok {
			return domain.ErrProductNotFound
		}
		if p.CategoryID != "" {
			if _, ok := s.categories[p.CategoryID]; !ok {
				return catalogapp.ErrCategoryNotFound
			}
		}
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = r.db.now()
		s.products[p.ID] = p
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Delete also drops the product's cart lines and reviews.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(func(s *state) error {
		if _, ok := s.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		delete(s.products, id)
		for _, lines := range s.carts {
			delete(lines, id)
		}
		for _, items := range s.wished {
			delete(items, id)
		}
		for rid, rv := range s.reviews {
			if rv.ProductID == id {
				delete(s.reviews, rid)
			}
		}
		return nil
	})
}

func (r *ProductRepo) SetStock(ctx context.Context, id string, stock int32) (domain.Product, error) {
	var p domain.Product
	err := r.db.update(func(s *state) error {
		var ok bool
		if p, ok = s.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		p.Stock = stock
		p.UpdatedAt = r.db.now()
		s.products[id] = p
		return nil
	})
	return p, err
}

type CategoryRepo struct{ db *DB }

func NewCategoryRepo(db *DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	err := r.db.update(func(s *state) error {
		if titleTaken(s, c.Title, "") {
			return catalogapp.ErrCategoryExists
		}
		now := r.db.now()
		c.ID = uuid.NewString()
		c.CreatedAt, c.UpdatedAt = now, now
		s.categories[c.ID] = c
		return nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.view(func(s *state) error {
		var ok bool
		if c, ok = s.categories[id]; !ok {
			return catalogapp.ErrCategoryNotFound
		}
		return nil
	})
	return c, err
}

func (r *CategoryRepo) List(ctx context.Context, titlePrefix string) ([]domain.Category, error) {
	var out []domain.Category
	prefix := strings.ToLower(titlePrefix)
	err := r.db.view(func(s *state) error {
		for _, c := range s.categories {
			if strings.HasPrefix(strings.ToLower(c.Title), prefix) {
				out = append(out, c)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Category) int { return strings.Compare(a.Title, b.Title) })
	return out, err
}

func (r *CategoryRepo) Update(ctx context.Context, c domain.Category) (domain.Category, error) {
	err := r.db.update(func(s *state) error {
		existing, ok := s.categories[c.ID]
		if !ok {
			return catalogapp.ErrCategoryNotFound
		}
		if titleTaken(s, c.Title, c.ID) {
			return catalogapp.ErrCategoryExists
		}
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = r.db.now()
		s.categories[c.ID] = c
		return nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

// Delete detaches the category's products instead of deleting them.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(func(s *state) error {
		if _, ok := s.categories[id]; !ok {
			return catalogapp.ErrCategoryNotFound
		}
		delete(s.categories, id)
		for pid, p := range s.products {
			if p.CategoryID == id {
				p.CategoryID = ""
				s.products[pid] = p
			}
		}
		return nil
	})
}

func titleTaken(s *state, title, exceptID string) bool {
	for id, c := range s.categories {
		if id != exceptID && c.Title == title {
			return true
		}
	}
	return false
}

type ReviewRepo struct{ db *DB }

func NewReviewRepo(db *DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv domain.Review) (domain.Review, error) {
	err := r.db.update(func(s *state) error {
		if _, ok := s.products[rv.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		for _, existing := range s.reviews {
			if existing.ProductID == rv.ProductID && existing.UserID == rv.UserID {
				return catalogapp.ErrReviewExists
			}
		}
		rv.ID = uuid.NewString()
		rv.CreatedAt = r.db.now()
		s.reviews[rv.ID] = rv
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}
	return rv, nil
}

func (r *ReviewRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.view(func(s *state) error {
		for _, rv := range s.reviews {
			if rv.ProductID == productID {
				out = append(out, rv)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, err
}
