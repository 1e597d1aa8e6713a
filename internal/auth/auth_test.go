package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guestID = "0b5cbd0e-5d1f-4b39-9a8b-0c56f4a0d1e2"

func TestResolveIgnoresRoleWithoutGateway(t *testing.T) {
	r := NewResolver(config.Default().Auth)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "u-1")
	req.Header.Set("X-User-Role", "admin")

	id := r.Resolve(req)
	assert.Equal(t, Identity{UserID: "u-1"}, id)
	assert.False(t, id.IsAdmin())
}

func TestResolve(t *testing.T) {
	cfg := config.Default().Auth
	cfg.TrustGateway = true
	r := NewResolver(cfg)

	tests := []struct {
		name    string
		prepare func(req *http.Request)
		want    Identity
	}{
		{
			name:    "anonymous",
			prepare: func(req *http.Request) {},
			want:    Identity{},
		},
		{
			name: "user with role",
			prepare: func(req *http.Request) {
				req.Header.Set("X-User-ID", " u-1 ")
				req.Header.Set("X-User-Role", "Admin")
			},
			want: Identity{UserID: "u-1", Role: RoleAdmin},
		},
		{
			name: "guest cookie",
			prepare: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "guest_session", Value: guestID})
			},
			want: Identity{GuestID: guestID},
		},
		{
			name: "guest header",
			prepare: func(req *http.Request) {
				req.Header.Set("X-Guest-Session", guestID)
			},
			want: Identity{GuestID: guestID},
		},
		{
			name: "malformed guest id is ignored",
			prepare: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "guest_session", Value: "not-a-uuid"})
			},
			want: Identity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			tt.prepare(req)
			assert.Equal(t, tt.want, r.Resolve(req))
		})
	}
}

func TestRequire(t *testing.T) {
	ctx := context.Background()

	_, err := RequireUser(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	customer := WithIdentity(ctx, Identity{UserID: "u-1"})
	_, err = RequireUser(customer)
	assert.NoError(t, err)
	_, err = RequireAdmin(customer)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := WithIdentity(ctx, Identity{UserID: "u-2", Role: RoleAdmin})
	id, err := RequireAdmin(admin)
	require.NoError(t, err)
	assert.Equal(t, "u-2", id.UserID)
}

func TestCartRef(t *testing.T) {
	ref, err := Identity{UserID: "u-1", GuestID: guestID}.CartRef()
	require.NoError(t, err)
	assert.Equal(t, cartdomain.UserRef("u-1"), ref)

	ref, err = Identity{GuestID: guestID}.CartRef()
	require.NoError(t, err)
	assert.True(t, ref.IsGuest())

	_, err = Identity{}.CartRef()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestEnsureGuest(t *testing.T) {
	r := NewResolver(config.Default().Auth)

	rec := httptest.NewRecorder()
	id := r.EnsureGuest(rec, Identity{})
	require.NotEmpty(t, id.GuestID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "guest_session", cookies[0].Name)
	assert.Equal(t, id.GuestID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// the issued id resolves on the next request
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, id.GuestID, r.Resolve(req).GuestID)

	rec = httptest.NewRecorder()
	same := r.EnsureGuest(rec, Identity{UserID: "u-1"})
	assert.Empty(t, same.GuestID)
	assert.Empty(t, rec.Result().Cookies())
}
