package domain

import (
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/pkg/apperr"
)

var (
	ErrAddressNotFound = apperr.NotFound("ADDRESS_NOT_FOUND", "address not found")
	ErrInvalidAddress  = apperr.Validation("INVALID_ADDRESS", "invalid address")
)

type Address struct {
	ID         string
	UserID     string
	FullName   string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
	Phone      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Normalize trims every field and checks the required ones.
func (a Address) Normalize() (Address, error) {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
	a.Phone = strings.TrimSpace(a.Phone)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"full_name", a.FullName},
		{"line1", a.Line1},
		{"city", a.City},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Address{}, ErrInvalidAddress.With("missing " + strings.Join(missing, ", "))
	}
	return a, nil
}
