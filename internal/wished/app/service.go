package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/wished/domain"
	"golang.org/x/sync/errgroup"
)

// Service keeps a per-user list of wished products. Products are read
// through the catalog, so deleted products drop out of the list.
type Service struct {
	repo    WishedRepo
	catalog CatalogReader

	maxConcurrent int
}

func NewService(repo WishedRepo, catalog CatalogReader, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Service{repo: repo, catalog: catalog, maxConcurrent: maxConcurrent}
}

func (s *Service) Add(ctx context.Context, userID, productID string) (domain.Item, error) {
	userID, productID, err := normalize(userID, productID)
	if err != nil {
		return domain.Item{}, err
	}
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return domain.Item{}, err
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	userID, productID, err := normalize(userID, productID)
	if err != nil {
		return err
	}
	return s.repo.Remove(ctx, userID, productID)
}

// IDs returns the wished product ids, most recent first.
func (s *Service) IDs(ctx context.Context, userID string) ([]string, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids, nil
}

// List joins the wished items with live product data.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Entry, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			p, err := s.catalog.GetProduct(gctx, it.ProductID)
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}
			entries[idx] = &domain.Entry{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Stock:     p.Stock,
				WishedAt:  it.CreatedAt,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out, nil
}

func normalize(userID, productID string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	if userID == "" || productID == "" {
		return "", "", domain.ErrInvalidItem
	}
	return userID, productID, nil
}
