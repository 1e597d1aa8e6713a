package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo    CartRepo
	catalog CatalogReader

	maxConcurrent int
}

func NewService(repo CartRepo, catalog CatalogReader, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Service{
		repo:          repo,
		catalog:       catalog,
		maxConcurrent: maxConcurrent,
	}
}

// AddOrIncrement inserts the product with quantity 1, or raises the existing
// quantity by one while it is below the product's stock.
func (s *Service) AddOrIncrement(ctx context.Context, ref domain.Ref, productID string) (domain.Item, error) {
	if err := validate(ref, productID); err != nil {
		return domain.Item{}, err
	}

	var item domain.Item
	err := s.repo.WithinTx(ctx, ref, func(tx Tx) error {
		slot, err := tx.Slot(ctx, productID)
		if err != nil {
			return err
		}
		if !slot.ProductExists {
			return domain.ErrProductNotFound
		}

		if slot.Quantity == 0 && slot.Stock <= 0 {
			return domain.ErrOutOfStock
		}
		if slot.Quantity >= slot.Stock {
			return domain.ErrStockLimitReached.With(fmt.Sprintf("product %s has %d in stock", productID, slot.Stock))
		}

		item = domain.Item{ProductID: productID, Quantity: slot.Quantity + 1}
		return tx.SetQuantity(ctx, productID, item.Quantity)
	})
	if err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// Decrement lowers the quantity by one; a line at quantity 1 is left as is.
func (s *Service) Decrement(ctx context.Context, ref domain.Ref, productID string) (domain.Item, error) {
	if err := validate(ref, productID); err != nil {
		return domain.Item{}, err
	}

	var item domain.Item
	err := s.repo.WithinTx(ctx, ref, func(tx Tx) error {
		slot, err := tx.Slot(ctx, productID)
		if err != nil {
			return err
		}
		if slot.Quantity == 0 {
			return domain.ErrNotInCart
		}

		item = domain.Item{ProductID: productID, Quantity: slot.Quantity}
		if slot.Quantity == 1 {
			return nil
		}
		item.Quantity--
		return tx.SetQuantity(ctx, productID, item.Quantity)
	})
	if err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// Remove deletes the line; removing an absent product succeeds.
func (s *Service) Remove(ctx context.Context, ref domain.Ref, productID string) error {
	if err := validate(ref, productID); err != nil {
		return err
	}
	return s.repo.WithinTx(ctx, ref, func(tx Tx) error {
		return tx.SetQuantity(ctx, productID, 0)
	})
}

// MergeGuestCart folds guest items into the user's cart. Each product ends at
// min(existing + guest, stock) but never below its existing quantity, and
// products that no longer exist are skipped.
func (s *Service) MergeGuestCart(ctx context.Context, user domain.Ref, guestItems []domain.Item) ([]domain.Item, error) {
	if !user.Valid() || user.IsGuest() {
		return nil, domain.ErrInvalidOwner
	}
	items, err := domain.Normalize(guestItems)
	if err != nil {
		return nil, err
	}

	var merged []domain.Item
	err = s.repo.WithinTx(ctx, user, func(tx Tx) error {
		for _, it := range items {
			slot, err := tx.Slot(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if !slot.ProductExists {
				continue
			}

			target := min(domain.AddQuantity(slot.Quantity, it.Quantity), slot.Stock)
			if target <= slot.Quantity {
				continue
			}
			if err := tx.SetQuantity(ctx, it.ProductID, target); err != nil {
				return err
			}
		}

		merged, err = tx.Items(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// MergeGuestSession merges the server-side guest cart into the user's cart and
// empties the guest cart afterwards.
func (s *Service) MergeGuestSession(ctx context.Context, user, guest domain.Ref) ([]domain.Item, error) {
	if !guest.Valid() || !guest.IsGuest() {
		return nil, domain.ErrInvalidOwner
	}

	guestItems, err := s.repo.Items(ctx, guest)
	if err != nil {
		return nil, fmt.Errorf("read guest cart: %w", err)
	}

	merged, err := s.MergeGuestCart(ctx, user, guestItems)
	if err != nil {
		return nil, err
	}
	if len(guestItems) == 0 {
		return merged, nil
	}

	if err := s.repo.Clear(ctx, guest); err != nil {
		return nil, fmt.Errorf("clear guest cart: %w", err)
	}
	return merged, nil
}

// ListItems joins the cart with live product data. Lines whose product has
// been deleted are left out.
func (s *Service) ListItems(ctx context.Context, ref domain.Ref) (domain.View, error) {
	if !ref.Valid() {
		return domain.View{}, domain.ErrInvalidOwner
	}

	items, err := s.repo.Items(ctx, ref)
	if err != nil {
		return domain.View{}, err
	}

	lines := make([]*domain.Line, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			product, err := s.catalog.GetProduct(gctx, it.ProductID)
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}

			lines[idx] = &domain.Line{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  it.Quantity,
				Stock:     product.Stock,
				UnitPrice: product.Price,
				LineTotal: product.Price.Mul(int64(it.Quantity)),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.View{}, err
	}

	view := domain.View{Owner: ref.Key(), Lines: make([]domain.Line, 0, len(lines))}
	for _, line := range lines {
		if line == nil {
			continue
		}
		if len(view.Lines) == 0 {
			view.Subtotal = money.Money{Currency: line.LineTotal.Currency}
		} else if line.LineTotal.Currency != view.Subtotal.Currency {
			return domain.View{}, domain.ErrMixedCurrency
		}
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
		view.Lines = append(view.Lines, *line)
	}

	return view, nil
}

func validate(ref domain.Ref, productID string) error {
	if !ref.Valid() {
		return domain.ErrInvalidOwner
	}
	if strings.TrimSpace(productID) == "" {
		return domain.ErrInvalidItem
	}
	return nil
}
