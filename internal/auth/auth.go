// Package auth resolves the caller's identity from headers set by the session
// gateway in front of the storefront, and manages guest sessions for
// anonymous carts.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/google/uuid"
)

const RoleAdmin = "admin"

// guestMaxAge keeps a guest cart around for a month of inactivity.
const guestMaxAge = 30 * 24 * time.Hour

var (
	ErrUnauthenticated = apperr.Unauthenticated("UNAUTHENTICATED", "sign in required")
	ErrForbidden       = apperr.Forbidden("FORBIDDEN", "admin role required")
	ErrNoSession       = apperr.Unauthenticated("NO_SESSION", "no user or guest session")
)

type Identity struct {
	UserID  string
	Role    string
	GuestID string
}

func (i Identity) Authenticated() bool { return i.UserID != "" }

func (i Identity) IsAdmin() bool { return i.Authenticated() && i.Role == RoleAdmin }

// CartRef addresses the user's cart when signed in, the guest cart otherwise.
func (i Identity) CartRef() (cartdomain.Ref, error) {
	if i.Authenticated() {
		return cartdomain.UserRef(i.UserID), nil
	}
	if i.GuestID != "" {
		return cartdomain.GuestRef(i.GuestID), nil
	}
	return cartdomain.Ref{}, ErrNoSession
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}

func RequireUser(ctx context.Context) (Identity, error) {
	id := FromContext(ctx)
	if !id.Authenticated() {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

func RequireAdmin(ctx context.Context) (Identity, error) {
	id, err := RequireUser(ctx)
	if err != nil {
		return Identity{}, err
	}
	if !id.IsAdmin() {
		return Identity{}, ErrForbidden
	}
	return id, nil
}

type Resolver struct {
	cfg config.AuthConfig
}

func NewResolver(cfg config.AuthConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve reads the identity headers. The role is read only behind a trusted
// gateway. The guest session comes from the cookie, or from the guest header
// for clients without cookies.
func (r *Resolver) Resolve(req *http.Request) Identity {
	id := Identity{UserID: strings.TrimSpace(req.Header.Get(r.cfg.UserHeader))}
	if r.cfg.TrustGateway {
		id.Role = strings.ToLower(strings.TrimSpace(req.Header.Get(r.cfg.RoleHeader)))
	}
	if c, err := req.Cookie(r.cfg.GuestCookie); err == nil {
		id.GuestID = strings.TrimSpace(c.Value)
	}
	if id.GuestID == "" {
		id.GuestID = strings.TrimSpace(req.Header.Get(r.cfg.GuestHeader))
	}
	if _, err := uuid.Parse(id.GuestID); err != nil {
		id.GuestID = ""
	}
	return id
}

// Middleware stores the resolved Identity in the request context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(w, req.WithContext(WithIdentity(req.Context(), r.Resolve(req))))
	})
}

// EnsureGuest returns an Identity that can own a cart, starting a guest
// session when the caller has neither a user nor a guest id.
func (r *Resolver) EnsureGuest(w http.ResponseWriter, id Identity) Identity {
	if id.Authenticated() || id.GuestID != "" {
		return id
	}
	id.GuestID = uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     r.cfg.GuestCookie,
		Value:    id.GuestID,
		Path:     "/",
		MaxAge:   int(guestMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(r.cfg.GuestHeader, id.GuestID)
	return id
}

// EndGuest expires the guest cookie once its cart has been merged.
func (r *Resolver) EndGuest(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     r.cfg.GuestCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
