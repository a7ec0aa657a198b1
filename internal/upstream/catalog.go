package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"storefront/internal/pricing"
)

var ErrProductNotFound = errors.New("product not found")

// Product is the slice of the upstream catalog the storefront needs: enough
// to render a listing and to snapshot a price at add-to-cart time.
type Product struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Type       string   `json:"type"` // simple, variable
	Price      string   `json:"price"`
	OnSale     bool     `json:"on_sale"`
	StockState string   `json:"stock_status"`
	Images     []string `json:"images,omitempty"`
}

type Variation struct {
	ID         int64             `json:"id"`
	Price      string            `json:"price"`
	Attributes map[string]string `json:"attributes"`
}

// PriceCents parses the upstream decimal price.
func (p *Product) PriceCents() (int64, error) {
	return pricing.ParseAmount(p.Price)
}

func (v *Variation) PriceCents() (int64, error) {
	return pricing.ParseAmount(v.Price)
}

func (c *Client) ListProducts(ctx context.Context, page, perPage int) ([]Product, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("per_page", fmt.Sprintf("%d", perPage))

	raw, err := c.do(ctx, http.MethodGet, "/products?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}

func (c *Client) GetVariation(ctx context.Context, productID, variationID int64) (*Variation, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/variations/%d", productID, variationID), nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var v Variation
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode variation: %w", err)
	}
	return &v, nil
}
