package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/dwikikusuma/storefront/internal/address/domain"
	"github.com/google/uuid"
)

type AddressRepo struct{ db *DB }

func NewAddressRepo(db *DB) *AddressRepo { return &AddressRepo{db: db} }

func (r *AddressRepo) Create(ctx context.Context, a domain.Address) (domain.Address, error) {
	err := r.db.update(func(s *state) error {
		now := r.db.now()
		a.ID = uuid.NewString()
		a.CreatedAt, a.UpdatedAt = now, now
		s.addresses[a.ID] = a
		return nil
	})
	if err != nil {
		return domain.Address{}, err
	}
	return a, nil
}

func (r *AddressRepo) Get(ctx context.Context, id string) (domain.Address, error) {
	var a domain.Address
	err := r.db.view(func(s *state) error {
		var ok bool
		if a, ok = s.addresses[id]; !ok {
			return domain.ErrAddressNotFound
		}
		return nil
	})
	return a, err
}

func (r *AddressRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	var out []domain.Address
	err := r.db.view(func(s *state) error {
		for _, a := range s.addresses {
			if a.UserID == userID {
				out = append(out, a)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Address) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r *AddressRepo) Update(ctx context.Context, a domain.Address) (domain.Address, error) {
	err := r.db.update(func(s *state) error {
		existing, ok := s.addresses[a.ID]
		if !ok {
			return domain.ErrAddressNotFound
		}
		a.CreatedAt = existing.CreatedAt
		a.UpdatedAt = r.db.now()
		s.addresses[a.ID] = a
		return nil
	})
	if err != nil {
		return domain.Address{}, err
	}
	return a, nil
}

func (r *AddressRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(func(s *state) error {
		if _, ok := s.addresses[id]; !ok {
			return domain.ErrAddressNotFound
		}
		delete(s.addresses, id)
		return nil
	})
}
