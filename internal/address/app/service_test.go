package app_test

import (
	"context"
	"testing"

	"github.com/dwikikusuma/storefront/internal/address/app"
	"github.com/dwikikusuma/storefront/internal/address/domain"
	"github.com/dwikikusuma/storefront/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func home() domain.Address {
	return domain.Address{
		FullName:   " Grace Hopper ",
		Line1:      "12 Navy Rd",
		City:       "Arlington",
		PostalCode: "22201",
		Country:    "us",
	}
}

func TestAddressBook(t *testing.T) {
	ctx := context.Background()
	svc := app.NewService(memory.NewAddressRepo(memory.New()))

	created, err := svc.Create(ctx, "u-1", home())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Grace Hopper", created.FullName)
	assert.Equal(t, "US", created.Country)

	t.Run("owner only", func(t *testing.T) {
		_, err := svc.Get(ctx, "u-2", created.ID)
		assert.ErrorIs(t, err, domain.ErrAddressNotFound)

		_, err = svc.Update(ctx, "u-2", created.ID, home())
		assert.ErrorIs(t, err, domain.ErrAddressNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, "u-2", created.ID), domain.ErrAddressNotFound)

		list, err := svc.List(ctx, "u-2")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("update", func(t *testing.T) {
		a := home()
		a.City = "Washington"
		updated, err := svc.Update(ctx, "u-1", created.ID, a)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "u-1", updated.UserID)
		assert.Equal(t, "Washington", updated.City)

		a.Line1 = ""
		_, err = svc.Update(ctx, "u-1", created.ID, a)
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, "u-1", created.ID))
		_, err := svc.Get(ctx, "u-1", created.ID)
		assert.ErrorIs(t, err, domain.ErrAddressNotFound)
	})
}

func TestCreateRejectsIncompleteAddress(t *testing.T) {
	svc := app.NewService(memory.NewAddressRepo(memory.New()))

	a := home()
	a.PostalCode = "  "
	_, err := svc.Create(context.Background(), "u-1", a)
	require.ErrorIs(t, err, domain.ErrInvalidAddress)
	assert.Contains(t, err.Error(), "postal_code")

	_, err = svc.Create(context.Background(), "", home())
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}
