package adapter

import (
	"context"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	wishedapp "github.com/dwikikusuma/storefront/internal/wished/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID string) (wishedapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return wishedapp.Product{}, err
	}
	return wishedapp.Product{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}, nil
}
