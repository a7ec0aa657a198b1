package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/pricing"
)

var ErrCouponNotFound = errors.New("coupon not found")

// LookupCoupon fetches a coupon definition by code. Codes are matched
// case-insensitively by the backend; we trim and lowercase before sending.
//
// Wire contract: {discount_type: "percent"|"fixed_cart", amount: "<decimal>"}
// or a 404 when the code does not exist.
func (c *Client) LookupCoupon(ctx context.Context, code string) (*pricing.Coupon, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCouponNotFound
	}

	raw, err := c.do(ctx, http.MethodGet, "/coupons/"+url.PathEscape(code), nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	var def struct {
		Code         string `json:"code"`
		DiscountType string `json:"discount_type"`
		Amount       string `json:"amount"`
	}
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decode coupon: %w", err)
	}

	amount, err := pricing.ParseAmount(def.Amount)
	if err != nil {
		return nil, fmt.Errorf("coupon %q amount: %w", code, err)
	}

	var dt pricing.DiscountType
	switch def.DiscountType {
	case "percent":
		dt = pricing.DiscountPercent
	case "fixed_cart":
		dt = pricing.DiscountFixedCart
	default:
		return nil, fmt.Errorf("coupon %q has unsupported discount type %q", code, def.DiscountType)
	}

	applied := def.Code
	if applied == "" {
		applied = code
	}

	return &pricing.Coupon{Code: applied, Type: dt, Amount: amount}, nil
}
