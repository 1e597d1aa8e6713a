package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"

	addressapp "github.com/dwikikusuma/storefront/internal/address/app"
	addresspg "github.com/dwikikusuma/storefront/internal/address/infra/postgres"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartpg "github.com/dwikikusuma/storefront/internal/cart/infra/postgres"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogpg "github.com/dwikikusuma/storefront/internal/catalog/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	orderadapter "github.com/dwikikusuma/storefront/internal/order/infra/adapter"
	orderpg "github.com/dwikikusuma/storefront/internal/order/infra/postgres"
	"github.com/dwikikusuma/storefront/migrations"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/money"
	pg "github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Set STOREFRONT_TEST_DATABASE_URL to a disposable database to run these.
const dsnEnv = "STOREFRONT_TEST_DATABASE_URL"

type fixture struct {
	catalog *catalogapp.Service
	cart    *cartapp.Service
	orders  *app.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	ctx := context.Background()
	pool, err := pg.Open(ctx, dsn, 30)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = migrations.Apply(ctx, pool)
	require.NoError(t, err)

	catalog := catalogapp.NewService(catalogpg.NewProductRepo(pool), catalogpg.NewCategoryRepo(pool), catalogpg.NewReviewRepo(pool))
	addresses := addressapp.NewService(addresspg.NewAddressRepo(pool))
	return &fixture{
		catalog: catalog,
		cart:    cartapp.NewService(cartpg.NewCartRepo(pool), cartadapter.NewCatalogServiceReader(catalog), 4),
		orders:  app.NewService(orderpg.NewOrderRepo(pool), orderadapter.NewAddressServiceReader(addresses), nil, logger.Discard()),
	}
}

func (f *fixture) product(t *testing.T, stock int32) string {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), catalogapp.ProductInput{
		Name:  "Widget " + uuid.NewString()[:8],
		Price: money.New("USD", 100),
		Stock: stock,
	})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) stock(t *testing.T, productID string) int32 {
	t.Helper()
	p, err := f.catalog.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

// users returns n fresh user ids, each holding one unit of every product in its cart.
func (f *fixture) users(t *testing.T, n int, productIDs ...string) []string {
	t.Helper()
	out := make([]string, n)
	for i := range out {
		out[i] = "pg-test-" + uuid.NewString()
		for _, pid := range productIDs {
			_, err := f.cart.AddOrIncrement(context.Background(), cartdomain.UserRef(out[i]), pid)
			require.NoError(t, err)
		}
	}
	return out
}

func (f *fixture) placeAll(t *testing.T, users []string) (placed, refused int) {
	t.Helper()
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, u := range users {
		g.Go(func() error {
			_, err := f.orders.PlaceOrder(context.Background(), u, domain.PlaceOrderInput{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				refused++
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	return placed, refused
}

func TestPlaceOrderLastUnit(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, 1)

	placed, refused := f.placeAll(t, f.users(t, 2, a))

	assert.Equal(t, 1, placed)
	assert.Equal(t, 1, refused)
	assert.Equal(t, int32(0), f.stock(t, a))
}

func TestPlaceOrderNeverOversells(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, 10)
	b := f.product(t, 10)

	// every cart locks both rows, so lock ordering is exercised as well
	placed, refused := f.placeAll(t, f.users(t, 20, b, a))

	assert.Equal(t, 10, placed)
	assert.Equal(t, 10, refused)
	assert.Equal(t, int32(0), f.stock(t, a))
	assert.Equal(t, int32(0), f.stock(t, b))
}

func TestCancelRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, 3)
	user := f.users(t, 1, a)[0]

	o, err := f.orders.PlaceOrder(ctx, user, domain.PlaceOrderInput{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.stock(t, a))

	cancelled, err := f.orders.Cancel(ctx, user, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, int32(3), f.stock(t, a))
}
