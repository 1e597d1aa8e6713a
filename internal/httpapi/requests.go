package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	addressdomain "github.com/dwikikusuma/storefront/internal/address/domain"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/idempotency"
	"github.com/dwikikusuma/storefront/pkg/money"
)

const maxBodyBytes = 1 << 20

var (
	ErrInvalidJSON  = apperr.Validation("INVALID_JSON", "invalid json body")
	ErrInvalidQuery = apperr.Validation("INVALID_QUERY", "invalid query parameter")
)

// decodeJSON reads r's body into v. An empty body leaves v untouched when
// optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return ErrInvalidJSON.With(err.Error())
	}
	return nil
}

func queryInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, ErrInvalidQuery.With(name)
	}
	return n, nil
}

func parseProductFilter(r *http.Request) (catalogdomain.ProductFilter, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return catalogdomain.ProductFilter{}, err
	}
	q := r.URL.Query()
	return catalogdomain.ProductFilter{
		Query:      strings.TrimSpace(q.Get("q")),
		CategoryID: strings.TrimSpace(q.Get("category")),
		Cursor:     strings.TrimSpace(q.Get("cursor")),
		Limit:      limit,
	}, nil
}

// productRequest carries the price as a decimal string in major units, e.g. "19.99".
type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	Currency    string `json:"currency"`
	Price       string `json:"price"`
	Stock       int32  `json:"stock"`
}

func parseProductInput(w http.ResponseWriter, r *http.Request) (catalogapp.ProductInput, error) {
	var req productRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return catalogapp.ProductInput{}, err
	}
	price, err := money.Parse(req.Currency, req.Price)
	if err != nil {
		return catalogapp.ProductInput{}, catalogapp.ErrInvalidInput.With(err.Error())
	}
	return catalogapp.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       price,
		Stock:       req.Stock,
	}, nil
}

type stockRequest struct {
	Stock *int32 `json:"stock"`
}

func parseStock(w http.ResponseWriter, r *http.Request) (int32, error) {
	var req stockRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return 0, err
	}
	if req.Stock == nil {
		return 0, catalogapp.ErrInvalidInput.With("stock is required")
	}
	return *req.Stock, nil
}

type categoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func parseCategory(w http.ResponseWriter, r *http.Request) (categoryRequest, error) {
	var req categoryRequest
	err := decodeJSON(w, r, &req, false)
	return req, err
}

type reviewRequest struct {
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

func parseReview(w http.ResponseWriter, r *http.Request) (reviewRequest, error) {
	var req reviewRequest
	err := decodeJSON(w, r, &req, false)
	return req, err
}

// mergeRequest is the client-side cart a guest built before signing in.
type mergeRequest struct {
	Items []cartdomain.Item `json:"items"`
}

func parseMerge(w http.ResponseWriter, r *http.Request) (mergeRequest, error) {
	var req mergeRequest
	err := decodeJSON(w, r, &req, true)
	return req, err
}

type placeOrderRequest struct {
	AddressID string `json:"address_id"`
}

func parsePlaceOrder(w http.ResponseWriter, r *http.Request) (orderdomain.PlaceOrderInput, error) {
	var req placeOrderRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		return orderdomain.PlaceOrderInput{}, err
	}
	return orderdomain.PlaceOrderInput{
		AddressID:      req.AddressID,
		IdempotencyKey: idempotency.Key(r),
	}, nil
}

type paymentRequest struct {
	Method string `json:"method"`
}

func parsePayment(w http.ResponseWriter, r *http.Request) (paymentRequest, error) {
	var req paymentRequest
	err := decodeJSON(w, r, &req, false)
	return req, err
}

type shipRequest struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

func parseShip(w http.ResponseWriter, r *http.Request) (shipRequest, error) {
	var req shipRequest
	err := decodeJSON(w, r, &req, false)
	return req, err
}

type addressRequest struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

func parseAddress(w http.ResponseWriter, r *http.Request) (addressdomain.Address, error) {
	var req addressRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return addressdomain.Address{}, err
	}
	return addressdomain.Address{
		FullName:   req.FullName,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
	}, nil
}
