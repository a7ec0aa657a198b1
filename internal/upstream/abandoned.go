package upstream

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// AbandonedCheckout is the best-effort snapshot pushed while a visitor is
// mid-checkout, keyed by phone number. Failures here are logged and dropped;
// they never affect the checkout flow itself.
type AbandonedCheckout struct {
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email,omitempty"`
	Address   string          `json:"address,omitempty"`
	State     string          `json:"state,omitempty"`
	CartItems []QuoteLineItem `json:"cartItems"`
	Timestamp time.Time       `json:"timestamp"`
}

func (c *Client) CaptureAbandonedCheckout(ctx context.Context, rec AbandonedCheckout) error {
	_, err := c.do(ctx, http.MethodPost, "/abandoned-cart", rec)
	return err
}

// DeleteAbandonedCheckout removes the record after a successful order.
func (c *Client) DeleteAbandonedCheckout(ctx context.Context, phone string) error {
	_, err := c.do(ctx, http.MethodDelete, "/abandoned-cart/"+url.PathEscape(phone), nil)
	return err
}
