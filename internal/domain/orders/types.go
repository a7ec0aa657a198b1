package orders

import (
	"context"
	"time"
)

// Order is the local record of an order that was successfully placed
// upstream. The backend owns the authoritative order; this row powers the
// session's order-history page without a round trip.
type Order struct {
	ID             int64     `json:"id"`
	SessionID      string    `json:"session_id"`
	Reference      string    `json:"reference"`
	UpstreamID     int64     `json:"upstream_id"`
	UpstreamNumber string    `json:"upstream_number"`
	Status         string    `json:"status"`
	PaymentMethod  string    `json:"payment_method"`
	CouponCode     *string   `json:"coupon_code,omitempty"`
	SubtotalCents  int64     `json:"subtotal_cents"`
	DiscountCents  int64     `json:"discount_cents"`
	ShippingCents  int64     `json:"shipping_cents"`
	TotalCents     int64     `json:"total_cents"`
	CreatedAt      time.Time `json:"created_at"`
}

type Store interface {
	Record(ctx context.Context, o *Order) error
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]Order, int, error)
	GetForSession(ctx context.Context, sessionID string, id int64) (*Order, error)
}
