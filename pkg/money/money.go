package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorDigits is the number of minor-unit digits stored in Amount.
const MinorDigits = 2

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCurrency = errors.New("invalid currency")
)

type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

func New(currency string, amount int64) Money {
	return Money{Currency: strings.ToUpper(strings.TrimSpace(currency)), Amount: amount}
}

// Parse reads a decimal major-unit string such as "19.99" into minor units.
func Parse(currency, value string) (Money, error) {
	cur, err := NormalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}

	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	minor := d.Shift(MinorDigits)
	if !minor.Equal(minor.Truncate(0)) {
		return Money{}, fmt.Errorf("%w: more than %d decimal places in %q", ErrInvalidAmount, MinorDigits, value)
	}

	return Money{Currency: cur, Amount: minor.IntPart()}, nil
}

func NormalizeCurrency(currency string) (string, error) {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if len(cur) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	for _, r := range cur {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
		}
	}
	return cur, nil
}

func (m Money) Mul(qty int64) Money {
	return Money{Currency: m.Currency, Amount: m.Amount * qty}
}

func (m Money) Add(o Money) Money {
	return Money{Currency: m.Currency, Amount: m.Amount + o.Amount}
}

func (m Money) IsZero() bool { return m.Amount == 0 }

// Decimal renders the amount in major units, e.g. "19.99".
func (m Money) Decimal() string {
	return decimal.New(m.Amount, -MinorDigits).StringFixed(MinorDigits)
}

func (m Money) String() string {
	return m.Decimal() + " " + m.Currency
}
