package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/pricing"
)

// QuoteAddress is the destination block of a shipping-quote request. The
// proxy expects the same shape for shipping and billing.
type QuoteAddress struct {
	Address  string `json:"address"`
	Country  string `json:"country"`
	State    string `json:"state"`
	Postcode string `json:"postcode,omitempty"`
}

type QuoteLineItem struct {
	ProductID   int64  `json:"product_id"`
	VariationID *int64 `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

type quoteRequest struct {
	Shipping  QuoteAddress    `json:"shipping"`
	Billing   QuoteAddress    `json:"billing"`
	LineItems []QuoteLineItem `json:"line_items"`
}

// ShippingRate is one priced delivery option from a quote. TotalCents is
// parsed from the upstream decimal string at decode time.
type ShippingRate struct {
	ID         string `json:"id"`
	MethodID   string `json:"method_id"`
	Label      string `json:"label"`
	Total      string `json:"total"`
	InstanceID *int64 `json:"instance_id,omitempty"`
	TotalCents int64  `json:"total_cents"`
}

type ShippingQuote struct {
	Rates          []ShippingRate `json:"rates"`
	SelectedRateID string         `json:"selected_rate_id,omitempty"`
}

// CalculateShipping requests delivery rates for a destination and the
// current cart lines.
func (c *Client) CalculateShipping(ctx context.Context, dest QuoteAddress, lines []QuoteLineItem) (*ShippingQuote, error) {
	req := quoteRequest{Shipping: dest, Billing: dest, LineItems: lines}

	raw, err := c.do(ctx, http.MethodPost, "/calculate-shipping", req)
	if err != nil {
		return nil, err
	}

	var quote ShippingQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("decode shipping quote: %w", err)
	}

	for i := range quote.Rates {
		cents, err := pricing.ParseAmount(quote.Rates[i].Total)
		if err != nil {
			return nil, fmt.Errorf("rate %q total: %w", quote.Rates[i].ID, err)
		}
		quote.Rates[i].TotalCents = cents
	}

	return &quote, nil
}
