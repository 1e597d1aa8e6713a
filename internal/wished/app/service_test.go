package app_test

import (
	"context"
	"testing"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/storage/memory"
	"github.com/dwikikusuma/storefront/internal/wished/app"
	"github.com/dwikikusuma/storefront/internal/wished/domain"
	"github.com/dwikikusuma/storefront/internal/wished/infra/adapter"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	wished  *app.Service
	catalog *catalogapp.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	catalog := catalogapp.NewService(memory.NewProductRepo(db), memory.NewCategoryRepo(db), memory.NewReviewRepo(db))
	return &fixture{
		wished:  app.NewService(memory.NewWishedRepo(db), adapter.NewCatalogServiceReader(catalog), 2),
		catalog: catalog,
	}
}

func (f *fixture) product(t *testing.T, name string, stock int32) string {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), catalogapp.ProductInput{
		Name:  name,
		Price: money.New("USD", 1000),
		Stock: stock,
	})
	require.NoError(t, err)
	return p.ID
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, "A", 1)

	first, err := f.wished.Add(ctx, "u-1", a)
	require.NoError(t, err)
	second, err := f.wished.Add(ctx, "u-1", " "+a+" ")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	ids, err := f.wished.IDs(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{a}, ids)
}

func TestAddRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, "A", 1)

	tests := []struct {
		name      string
		userID    string
		productID string
		wantErr   error
	}{
		{"missing user", "", a, domain.ErrInvalidItem},
		{"missing product", "u-1", " ", domain.ErrInvalidItem},
		{"unknown product", "u-1", "nope", domain.ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.wished.Add(ctx, tt.userID, tt.productID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestListJoinsLiveProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, "A", 0)
	b := f.product(t, "B", 4)
	c := f.product(t, "C", 2)

	for _, id := range []string{a, b, c} {
		_, err := f.wished.Add(ctx, "u-1", id)
		require.NoError(t, err)
	}
	_, err := f.wished.Add(ctx, "u-2", b)
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteProduct(ctx, c))
	_, err = f.catalog.SetStock(ctx, a, 5)
	require.NoError(t, err)

	list, err := f.wished.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b, list[0].ProductID, "most recent first")
	assert.Equal(t, a, list[1].ProductID)
	assert.Equal(t, int32(5), list[1].Stock)
	assert.True(t, list[1].Available())
	assert.Equal(t, money.New("USD", 1000), list[0].Price)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, "A", 1)

	_, err := f.wished.Add(ctx, "u-1", a)
	require.NoError(t, err)

	require.NoError(t, f.wished.Remove(ctx, "u-2", a), "other users are unaffected")
	require.NoError(t, f.wished.Remove(ctx, "u-1", a))
	require.NoError(t, f.wished.Remove(ctx, "u-1", a), "removing twice is fine")

	ids, err := f.wished.IDs(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
