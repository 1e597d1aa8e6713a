// Package httpapi is the storefront's JSON HTTP surface. Handlers parse a
// typed request, call one service operation and render the result; errors
// are mapped to statuses through their gRPC code.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	addressapp "github.com/dwikikusuma/storefront/internal/address/app"
	"github.com/dwikikusuma/storefront/internal/auth"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
	shipmentapp "github.com/dwikikusuma/storefront/internal/shipment/app"
	wishedapp "github.com/dwikikusuma/storefront/internal/wished/app"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type Deps struct {
	Catalog   *catalogapp.Service
	Cart      *cartapp.Service
	Orders    *orderapp.Service
	Payments  *paymentapp.Service
	Shipments *shipmentapp.Service
	Addresses *addressapp.Service
	Wished    *wishedapp.Service
	Auth      *auth.Resolver

	// Metrics and Gatherer are optional.
	Metrics  *metrics.ServerMetrics
	Gatherer prometheus.Gatherer
	// Ready backs /readyz; nil means always ready.
	Ready func(ctx context.Context) error
	Log   *slog.Logger
}

type handler struct {
	Deps
}

type apiFunc func(w http.ResponseWriter, r *http.Request) error

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	h := &handler{Deps: d}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", h.ready)
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(d.Gatherer))
	}

	h.route(mux, "GET /api/products", "products_list", h.listProducts)
	h.route(mux, "GET /api/products/{id}", "products_get", h.getProduct)
	h.route(mux, "GET /api/products/{id}/reviews", "reviews_list", h.listReviews)
	h.route(mux, "POST /api/products/{id}/reviews", "reviews_add", h.addReview)
	h.route(mux, "GET /api/categories", "categories_list", h.listCategories)
	h.route(mux, "GET /api/categories/{id}", "categories_get", h.getCategory)

	h.route(mux, "GET /api/cart", "cart_get", h.getCart)
	h.route(mux, "POST /api/cart/items/{productID}", "cart_add", h.addToCart)
	h.route(mux, "POST /api/cart/items/{productID}/decrement", "cart_decrement", h.decrementCart)
	h.route(mux, "DELETE /api/cart/items/{productID}", "cart_remove", h.removeFromCart)
	h.route(mux, "POST /api/cart/merge", "cart_merge", h.mergeCart)

	h.route(mux, "GET /api/orders", "orders_list", h.listOrders)
	h.route(mux, "POST /api/orders", "orders_place", h.placeOrder)
	h.route(mux, "GET /api/orders/{id}", "orders_get", h.getOrder)
	h.route(mux, "POST /api/orders/{id}/payments", "payments_create", h.createPayment)
	h.route(mux, "POST /api/orders/{id}/confirm-delivery", "orders_confirm_delivery", h.confirmDelivery)
	h.route(mux, "POST /api/orders/{id}/cancel", "orders_cancel", h.cancelOrder)

	h.route(mux, "GET /api/addresses", "addresses_list", h.listAddresses)
	h.route(mux, "POST /api/addresses", "addresses_create", h.createAddress)
	h.route(mux, "PUT /api/addresses/{id}", "addresses_update", h.updateAddress)
	h.route(mux, "DELETE /api/addresses/{id}", "addresses_delete", h.deleteAddress)

	h.route(mux, "GET /api/wishlist", "wishlist_list", h.listWished)
	h.route(mux, "GET /api/wishlist/ids", "wishlist_ids", h.wishedIDs)
	h.route(mux, "PUT /api/wishlist/{productID}", "wishlist_add", h.addWished)
	h.route(mux, "DELETE /api/wishlist/{productID}", "wishlist_remove", h.removeWished)

	h.route(mux, "POST /api/admin/categories", "admin_categories_create", h.createCategory)
	h.route(mux, "PUT /api/admin/categories/{id}", "admin_categories_update", h.updateCategory)
	h.route(mux, "DELETE /api/admin/categories/{id}", "admin_categories_delete", h.deleteCategory)
	h.route(mux, "POST /api/admin/products", "admin_products_create", h.createProduct)
	h.route(mux, "PUT /api/admin/products/{id}", "admin_products_update", h.updateProduct)
	h.route(mux, "DELETE /api/admin/products/{id}", "admin_products_delete", h.deleteProduct)
	h.route(mux, "PUT /api/admin/products/{id}/stock", "admin_products_stock", h.setStock)
	h.route(mux, "POST /api/admin/orders/{id}/prepare", "admin_orders_prepare", h.prepareShipment)
	h.route(mux, "POST /api/admin/orders/{id}/ship", "admin_orders_ship", h.shipOrder)

	return logRequests(d.Log, recoverPanics(d.Log, d.Auth.Middleware(mux)))
}

func (h *handler) route(mux *http.ServeMux, pattern, name string, fn apiFunc) {
	var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.fail(w, r, err)
		}
	})
	if h.Metrics != nil {
		next = h.Metrics.Wrap(name, next)
	}
	mux.Handle(pattern, next)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, body := errorResponse(err)
	if code >= http.StatusInternalServerError {
		h.Log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("code", body.Error.Code),
			slog.Any("err", err),
		)
	}
	writeJSON(w, code, body)
}

func (h *handler) ready(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			h.Log.WarnContext(r.Context(), "not ready", slog.Any("err", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
