package memory

import (
	"context"
	"errors"
	"testing"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailedUnitOfWorkLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	db := New()
	p, err := NewProductRepo(db).Create(ctx, catalogdomain.Product{Name: "Mug", Price: money.New("USD", 500), Stock: 3})
	require.NoError(t, err)

	carts := NewCartRepo(db)
	boom := errors.New("boom")
	err = carts.WithinTx(ctx, cartdomain.UserRef("u-1"), func(tx cartapp.Tx) error {
		if err := tx.SetQuantity(ctx, p.ID, 2); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := carts.Items(ctx, cartdomain.UserRef("u-1"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartItemsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	db := New()
	products := NewProductRepo(db)

	var ids []string
	for _, name := range []string{"c", "a", "b"} {
		p, err := products.Create(ctx, catalogdomain.Product{Name: name, Price: money.New("USD", 100), Stock: 5})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	carts := NewCartRepo(db)
	ref := cartdomain.GuestRef("g-1")
	require.NoError(t, carts.WithinTx(ctx, ref, func(tx cartapp.Tx) error {
		for _, id := range ids {
			if err := tx.SetQuantity(ctx, id, 1); err != nil {
				return err
			}
		}
		return tx.SetQuantity(ctx, ids[0], 4)
	}))

	items, err := carts.Items(ctx, ref)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, cartdomain.Item{ProductID: ids[0], Quantity: 4}, items[0])
	assert.Equal(t, ids[1], items[1].ProductID)
	assert.Equal(t, ids[2], items[2].ProductID)
}

func TestDeleteProductCascades(t *testing.T) {
	ctx := context.Background()
	db := New()
	products := NewProductRepo(db)
	p, err := products.Create(ctx, catalogdomain.Product{Name: "Lamp", Price: money.New("USD", 100), Stock: 5})
	require.NoError(t, err)

	carts := NewCartRepo(db)
	ref := cartdomain.UserRef("u-1")
	require.NoError(t, carts.WithinTx(ctx, ref, func(tx cartapp.Tx) error { return tx.SetQuantity(ctx, p.ID, 1) }))
	_, err = NewReviewRepo(db).Create(ctx, catalogdomain.Review{ProductID: p.ID, UserID: "u-1", Rating: 5})
	require.NoError(t, err)

	require.NoError(t, products.Delete(ctx, p.ID))

	items, err := carts.Items(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, items)

	reviews, err := NewReviewRepo(db).ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestCategoryTitleUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepo(New())

	_, err := repo.Create(ctx, catalogdomain.Category{Title: "Kitchen"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, catalogdomain.Category{Title: "Kitchen"})
	assert.ErrorIs(t, err, catalogapp.ErrCategoryExists)
}

func TestProductListPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(New())
	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, catalogdomain.Product{Name: "Item", Price: money.New("USD", 100)})
		require.NoError(t, err)
	}

	page1, next, err := repo.List(ctx, catalogdomain.ProductFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotEmpty(t, next)

	page2, next, err := repo.List(ctx, catalogdomain.ProductFilter{Limit: 3, Cursor: next})
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	assert.Empty(t, next)
	assert.Less(t, page1[2].ID, page2[0].ID)
}
