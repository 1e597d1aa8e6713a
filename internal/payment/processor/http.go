package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/payment/app"
)

// HTTP posts charges as JSON to an external processor endpoint.
type HTTP struct {
	URL    string
	Client *http.Client
}

func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{URL: url, Client: client}
}

type chargeRequest struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Method    string `json:"method"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type chargeResponse struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

func (h *HTTP) Submit(ctx context.Context, c app.Charge) (app.Result, error) {
	body, err := json.Marshal(chargeRequest{
		PaymentID: c.PaymentID,
		OrderID:   c.OrderID,
		Method:    c.Method,
		Amount:    c.Amount.Amount,
		Currency:  c.Amount.Currency,
	})
	if err != nil {
		return app.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return app.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	// the payment id doubles as the provider-side idempotency key
	req.Header.Set("Idempotency-Key", c.PaymentID)

	resp, err := h.Client.Do(req)
	if err != nil {
		return app.Result{}, fmt.Errorf("payment processor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return app.Result{}, fmt.Errorf("payment processor: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return app.Result{}, fmt.Errorf("payment processor: decode response: %w", err)
	}
	return app.Result{Approved: out.Approved, Reference: out.Reference, Reason: out.Reason}, nil
}
