package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/dwikikusuma/storefront/internal/wished/domain"
)

type WishedRepo struct{ db *DB }

func NewWishedRepo(db *DB) *WishedRepo { return &WishedRepo{db: db} }

func (r *WishedRepo) Add(ctx context.Context, userID, productID string) (domain.Item, error) {
	it := domain.Item{UserID: userID, ProductID: productID}
	err := r.db.update(func(s *state) error {
		if _, ok := s.products[productID]; !ok {
			return domain.ErrProductNotFound
		}
		if at, ok := s.wished[userID][productID]; ok {
			it.CreatedAt = at
			return nil
		}
		if s.wished[userID] == nil {
			s.wished[userID] = map[string]wishedAt{}
		}
		it.CreatedAt = r.db.now()
		s.wished[userID][productID] = wishedAt{at: it.CreatedAt, seq: s.next()}
		return nil
	})
	if err != nil {
		return domain.Item{}, err
	}
	return it, nil
}

func (r *WishedRepo) Remove(ctx context.Context, userID, productID string) error {
	return r.db.update(func(s *state) error {
		delete(s.wished[userID], productID)
		return nil
	})
}

func (r *WishedRepo) ListByUser(ctx context.Context, userID string) ([]domain.Item, error) {
	type row struct {
		item domain.Item
		seq  int64
	}
	var rows []row
	err := r.db.view(func(s *state) error {
		for pid, w := range s.wished[userID] {
			rows = append(rows, row{item: domain.Item{UserID: userID, ProductID: pid, CreatedAt: w.at}, seq: w.seq})
		}
		return nil
	})
	slices.SortFunc(rows, func(a, b row) int { return cmp.Compare(b.seq, a.seq) })
	out := make([]domain.Item, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.item)
	}
	return out, err
}
