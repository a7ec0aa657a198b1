package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Order submission wire types. The backend owns final pricing and tax; this
// payload is assembled client-side and sent exactly once per attempt.

type OrderBilling struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address1  string `json:"address_1"`
	Country   string `json:"country"`
	State     string `json:"state"`
	Postcode  string `json:"postcode,omitempty"`
}

type OrderShipping struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Country   string `json:"country"`
	State     string `json:"state"`
	Postcode  string `json:"postcode,omitempty"`
}

type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type OrderLineItem struct {
	ProductID   int64      `json:"product_id"`
	Quantity    int        `json:"quantity"`
	VariationID *int64     `json:"variation_id,omitempty"`
	MetaData    []MetaData `json:"meta_data,omitempty"`
}

type OrderShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
	InstanceID  *int64 `json:"instance_id,omitempty"`
}

type OrderCouponLine struct {
	Code string `json:"code"`
}

type OrderPayload struct {
	Billing            OrderBilling        `json:"billing"`
	Shipping           OrderShipping       `json:"shipping"`
	LineItems          []OrderLineItem     `json:"line_items"`
	ShippingLines      []OrderShippingLine `json:"shipping_lines,omitempty"`
	CouponLines        []OrderCouponLine   `json:"coupon_lines,omitempty"`
	PaymentMethod      string              `json:"payment_method"`
	PaymentMethodTitle string              `json:"payment_method_title"`
	Currency           string              `json:"currency"`
}

// CreatedOrder is the backend's record of the placed order.
type CreatedOrder struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	Status   string `json:"status"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// SubmitOrder places the order. Not retried on failure; the upstream error
// message is surfaced verbatim to the user.
func (c *Client) SubmitOrder(ctx context.Context, payload OrderPayload) (*CreatedOrder, error) {
	raw, err := c.do(ctx, http.MethodPost, "/create-order", payload)
	if err != nil {
		return nil, err
	}

	var order CreatedOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode created order: %w", err)
	}
	return &order, nil
}
