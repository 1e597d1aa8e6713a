package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/storefront/internal/address/domain"
)

// Service manages a user's address book. Addresses owned by someone else are
// reported as not found.
type Service struct {
	repo AddressRepo
}

func NewService(repo AddressRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID string, a domain.Address) (domain.Address, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Address{}, domain.ErrInvalidAddress
	}
	a, err := a.Normalize()
	if err != nil {
		return domain.Address{}, err
	}
	a.UserID = userID
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, userID, id string) (domain.Address, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Address{}, err
	}
	if a.UserID != userID {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, id string, a domain.Address) (domain.Address, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return domain.Address{}, err
	}
	a, err = a.Normalize()
	if err != nil {
		return domain.Address{}, err
	}
	a.ID = existing.ID
	a.UserID = existing.UserID
	a.CreatedAt = existing.CreatedAt
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
