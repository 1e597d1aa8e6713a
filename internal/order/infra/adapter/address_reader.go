package adapter

import (
	"context"

	addressapp "github.com/dwikikusuma/storefront/internal/address/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
)

type AddressServiceReader struct {
	svc *addressapp.Service
}

func NewAddressServiceReader(svc *addressapp.Service) *AddressServiceReader {
	return &AddressServiceReader{svc: svc}
}

func (r *AddressServiceReader) GetAddress(ctx context.Context, userID, addressID string) (orderdomain.ShippingAddress, error) {
	a, err := r.svc.Get(ctx, userID, addressID)
	if err != nil {
		return orderdomain.ShippingAddress{}, err
	}

	return orderdomain.ShippingAddress{
		FullName:   a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}, nil
}
