package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dwikikusuma/storefront/internal/auth"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	paymentdomain "github.com/dwikikusuma/storefront/internal/payment/domain"
	shipmentdomain "github.com/dwikikusuma/storefront/internal/shipment/domain"
)

// catalog

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) error {
	filter, err := parseProductFilter(r)
	if err != nil {
		return err
	}
	products, next, err := h.Catalog.ListProducts(r.Context(), filter)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, productPage{Items: toProducts(products), NextCursor: next})
	return nil
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) error {
	p, err := h.Catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toProduct(p))
	return nil
}

func (h *handler) listReviews(w http.ResponseWriter, r *http.Request) error {
	reviews, err := h.Catalog.ListReviews(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	out := make([]reviewJSON, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReview(rv))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (h *handler) addReview(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	req, err := parseReview(w, r)
	if err != nil {
		return err
	}
	rv, err := h.Catalog.AddReview(r.Context(), r.PathValue("id"), id.UserID, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, toReview(rv))
	return nil
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) error {
	cats, err := h.Catalog.ListCategories(r.Context(), strings.TrimSpace(r.URL.Query().Get("title")))
	if err != nil {
		return err
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategory(c))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (h *handler) getCategory(w http.ResponseWriter, r *http.Request) error {
	c, err := h.Catalog.GetCategoryWithProducts(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	out := toCategory(c.Category)
	out.Products = toProducts(c.Products)
	writeJSON(w, http.StatusOK, out)
	return nil
}

// cart

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) error {
	ref, err := auth.FromContext(r.Context()).CartRef()
	if err != nil {
		// no session yet: nothing in the cart
		writeJSON(w, http.StatusOK, toCart(cartdomain.View{}))
		return nil
	}
	view, err := h.Cart.ListItems(r.Context(), ref)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toCart(view))
	return nil
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) error {
	id := h.Auth.EnsureGuest(w, auth.FromContext(r.Context()))
	ref, err := id.CartRef()
	if err != nil {
		return err
	}
	item, err := h.Cart.AddOrIncrement(r.Context(), ref, r.PathValue("productID"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, item)
	return nil
}

func (h *handler) decrementCart(w http.ResponseWriter, r *http.Request) error {
	ref, err := auth.FromContext(r.Context()).CartRef()
	if err != nil {
		return err
	}
	item, err := h.Cart.Decrement(r.Context(), ref, r.PathValue("productID"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, item)
	return nil
}

func (h *handler) removeFromCart(w http.ResponseWriter, r *http.Request) error {
	ref, err := auth.FromContext(r.Context()).CartRef()
	if err != nil {
		return err
	}
	if err := h.Cart.Remove(r.Context(), ref, r.PathValue("productID")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// mergeCart folds a guest's cart into the signed-in user's cart: items posted
// from the client first, then the server-side guest session if any.
func (h *handler) mergeCart(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	req, err := parseMerge(w, r)
	if err != nil {
		return err
	}

	user := cartdomain.UserRef(id.UserID)
	if _, err := h.Cart.MergeGuestCart(r.Context(), user, req.Items); err != nil {
		return err
	}
	if id.GuestID != "" {
		if _, err := h.Cart.MergeGuestSession(r.Context(), user, cartdomain.GuestRef(id.GuestID)); err != nil {
			return err
		}
		h.Auth.EndGuest(w)
	}

	view, err := h.Cart.ListItems(r.Context(), user)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toCart(view))
	return nil
}

// orders

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}
	orders, err := h.Orders.List(r.Context(), id.UserID, limit)
	if err != nil {
		return err
	}
	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (h *handler) placeOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	in, err := parsePlaceOrder(w, r)
	if err != nil {
		return err
	}
	o, err := h.Orders.PlaceOrder(r.Context(), id.UserID, in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, toOrder(o))
	return nil
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	o, err := h.Orders.Get(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		return err
	}
	out := toOrder(o)

	p, err := h.Payments.GetForOrder(r.Context(), o.ID)
	switch {
	case err == nil:
		out.Payment = toPayment(p)
	case !errors.Is(err, paymentdomain.ErrPaymentNotFound):
		return err
	}

	sh, err := h.Shipments.Get(r.Context(), o.ID)
	switch {
	case err == nil:
		out.Shipment = toShipment(sh)
	case !errors.Is(err, shipmentdomain.ErrShipmentNotFound):
		return err
	}

	writeJSON(w, http.StatusOK, out)
	return nil
}

func (h *handler) createPayment(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	req, err := parsePayment(w, r)
	if err != nil {
		return err
	}
	p, err := h.Payments.CreatePayment(r.Context(), id.UserID, r.PathValue("id"), req.Method)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, toPayment(p))
	return nil
}

func (h *handler) confirmDelivery(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	o, err := h.Orders.ConfirmDelivery(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toOrder(o))
	return nil
}

func (h *handler) cancelOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	o, err := h.Orders.Cancel(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toOrder(o))
	return nil
}

// addresses

func (h *handler) listAddresses(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	list, err := h.Addresses.List(r.Context(), id.UserID)
	if err != nil {
		return err
	}
	out := make([]addressJSON, 0, len(list))
	for _, a := range list {
		out = append(out, toAddress(a))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (h *handler) createAddress(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	in, err := parseAddress(w, r)
	if err != nil {
		return err
	}
	a, err := h.Addresses.Create(r.Context(), id.UserID, in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, toAddress(a))
	return nil
}

func (h *handler) updateAddress(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	in, err := parseAddress(w, r)
	if err != nil {
		return err
	}
	a, err := h.Addresses.Update(r.Context(), id.UserID, r.PathValue("id"), in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toAddress(a))
	return nil
}

func (h *handler) deleteAddress(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	if err := h.Addresses.Delete(r.Context(), id.UserID, r.PathValue("id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// admin

func (h *handler) createCategory(w http.ResponseWriter, r *http.Request) error {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		return err
	}
	req, err := parseCategory(w, r)
	if err != nil {
		return err
	}
	c, err := h.Catalog.CreateCategory(r.Context(), req.Title, req.Description)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, toCategory(c))
	return nil
}

func (h *handler) updateCategory(w http.ResponseWriter, r *http.Request) error {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		return err
	}
	req, err := parseCategory(w, r)
	if err != nil {
		return err
	}
	c, err := h.Catalog.UpdateCategory(r.Context(), r.PathValue("id"), req.Title, req.Description)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toCategory(c))
	return nil
}

func (h *handler) deleteCategory(w http.ResponseWriter, r *http.Request) error {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		return err
	}
	if err := h.Catalog.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) error {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		return err
	}
	in, err := parseProductInput(w, r)
	if err != nil {
		return err
	}
	p, err := h.Catalog.CreateProduct(r.Context(), in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, toProduct(p))
	return nil
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) error {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		return err
	}
	in, err := parseProductInput(w, r)
	if err != nil {
		return err
	}
	p, err := h.Catalog.UpdateProduct(r.Context(), r.PathValue("id"), in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toProduct(p))
	return nil
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) error {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		return err
	}
	if err := h.Catalog.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *handler) setStock(w http.ResponseWriter, r *http.Request) error {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		return err
	}
	stock, err := parseStock(w, r)
	if err != nil {
		return err
	}
	p, err := h.Catalog.SetStock(r.Context(), r.PathValue("id"), stock)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toProduct(p))
	return nil
}

func (h *handler) prepareShipment(w http.ResponseWriter, r *http.Request) error {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		return err
	}
	sh, err := h.Shipments.Prepare(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toShipment(sh))
	return nil
}

func (h *handler) shipOrder(w http.ResponseWriter, r *http.Request) error {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		return err
	}
	req, err := parseShip(w, r)
	if err != nil {
		return err
	}
	sh, err := h.Shipments.MarkShipped(r.Context(), r.PathValue("id"), req.Carrier, req.TrackingNumber)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toShipment(sh))
	return nil
}

// wishlist

func (h *handler) listWished(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	list, err := h.Wished.List(r.Context(), id.UserID)
	if err != nil {
		return err
	}
	out := make([]wishedJSON, 0, len(list))
	for _, e := range list {
		out = append(out, toWished(e))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (h *handler) wishedIDs(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	ids, err := h.Wished.IDs(r.Context(), id.UserID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string][]string{"product_ids": ids})
	return nil
}

func (h *handler) addWished(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	it, err := h.Wished.Add(r.Context(), id.UserID, r.PathValue("productID"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"product_id": it.ProductID, "wished_at": it.CreatedAt})
	return nil
}

func (h *handler) removeWished(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireUser(r.Context())
	if err != nil {
		return err
	}
	if err := h.Wished.Remove(r.Context(), id.UserID, r.PathValue("productID")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
