package httpapi

import (
	"time"

	addressdomain "github.com/dwikikusuma/storefront/internal/address/domain"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	paymentdomain "github.com/dwikikusuma/storefront/internal/payment/domain"
	shipmentdomain "github.com/dwikikusuma/storefront/internal/shipment/domain"
	wisheddomain "github.com/dwikikusuma/storefront/internal/wished/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
)

// moneyJSON carries minor units for machines and the decimal for display.
type moneyJSON struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
	Display  string `json:"display"`
}

func toMoney(m money.Money) moneyJSON {
	return moneyJSON{Currency: m.Currency, Amount: m.Amount, Display: m.Decimal()}
}

type productJSON struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       moneyJSON `json:"price"`
	Stock       int32     `json:"stock"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProduct(p catalogdomain.Product) productJSON {
	return productJSON{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       toMoney(p.Price),
		Stock:       p.Stock,
		InStock:     p.InStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProducts(ps []catalogdomain.Product) []productJSON {
	out := make([]productJSON, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProduct(p))
	}
	return out
}

type productPage struct {
	Items      []productJSON `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type categoryJSON struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Products    []productJSON `json:"products,omitempty"`
}

func toCategory(c catalogdomain.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Title: c.Title, Description: c.Description}
}

type reviewJSON struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int32     `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toReview(r catalogdomain.Review) reviewJSON {
	return reviewJSON{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

type cartLineJSON struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int32     `json:"quantity"`
	Stock     int32     `json:"stock"`
	UnitPrice moneyJSON `json:"unit_price"`
	LineTotal moneyJSON `json:"line_total"`
}

type cartJSON struct {
	Lines    []cartLineJSON `json:"lines"`
	Subtotal *moneyJSON     `json:"subtotal,omitempty"`
}

func toCart(v cartdomain.View) cartJSON {
	out := cartJSON{Lines: make([]cartLineJSON, 0, len(v.Lines))}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, cartLineJSON{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Stock:     l.Stock,
			UnitPrice: toMoney(l.UnitPrice),
			LineTotal: toMoney(l.LineTotal),
		})
	}
	if len(v.Lines) > 0 {
		sub := toMoney(v.Subtotal)
		out.Subtotal = &sub
	}
	return out
}

type orderItemJSON struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int32     `json:"quantity"`
	UnitPrice moneyJSON `json:"unit_price"`
	LineTotal moneyJSON `json:"line_total"`
}

type paymentJSON struct {
	ID            string    `json:"id"`
	Method        string    `json:"method"`
	Amount        moneyJSON `json:"amount"`
	Status        string    `json:"status"`
	Reference     string    `json:"reference,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPayment(p paymentdomain.Payment) *paymentJSON {
	return &paymentJSON{
		ID:            p.ID,
		Method:        p.Method,
		Amount:        toMoney(p.Amount),
		Status:        string(p.Status),
		Reference:     p.Reference,
		FailureReason: p.FailureReason,
		UpdatedAt:     p.UpdatedAt,
	}
}

type shipmentJSON struct {
	Status         string     `json:"status"`
	Carrier        string     `json:"carrier,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

func toShipment(s shipmentdomain.Shipment) *shipmentJSON {
	return &shipmentJSON{
		Status:         string(s.Status),
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		ShippedAt:      s.ShippedAt,
		DeliveredAt:    s.DeliveredAt,
	}
}

type orderJSON struct {
	ID              string                       `json:"id"`
	Status          string                       `json:"status"`
	Total           moneyJSON                    `json:"total"`
	Items           []orderItemJSON              `json:"items"`
	ShippingAddress *orderdomain.ShippingAddress `json:"shipping_address,omitempty"`
	Payment         *paymentJSON                 `json:"payment,omitempty"`
	Shipment        *shipmentJSON                `json:"shipment,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

func toOrder(o orderdomain.Order) orderJSON {
	out := orderJSON{
		ID:              o.ID,
		Status:          string(o.Status),
		Total:           toMoney(o.Total()),
		Items:           make([]orderItemJSON, 0, len(o.OrderItems)),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, it := range o.OrderItems {
		out.Items = append(out.Items, orderItemJSON{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: toMoney(money.New(o.Currency, it.UnitAmount)),
			LineTotal: toMoney(money.New(o.Currency, it.LineTotalAmount)),
		})
	}
	return out
}

type addressJSON struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

func toAddress(a addressdomain.Address) addressJSON {
	return addressJSON{
		ID:         a.ID,
		FullName:   a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

type wishedJSON struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     moneyJSON `json:"price"`
	Stock     int32     `json:"stock"`
	InStock   bool      `json:"in_stock"`
	WishedAt  time.Time `json:"wished_at"`
}

func toWished(e wisheddomain.Entry) wishedJSON {
	return wishedJSON{
		ProductID: e.ProductID,
		Name:      e.Name,
		Price:     toMoney(e.Price),
		Stock:     e.Stock,
		InStock:   e.Available(),
		WishedAt:  e.WishedAt,
	}
}
