package orders

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

var ErrOrderNotFound = errors.New("order not found")

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Record(ctx context.Context, o *Order) error {
	err := r.db.QueryRow(ctx, `
INSERT INTO orders
  (session_id, reference, upstream_id, upstream_number, status, payment_method,
   coupon_code, subtotal_cents, discount_cents, shipping_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, created_at
`, o.SessionID, o.Reference, o.UpstreamID, o.UpstreamNumber, o.Status, o.PaymentMethod,
		o.CouponCode, o.SubtotalCents, o.DiscountCents, o.ShippingCents, o.TotalCents,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("record order: %w", err)
	}
	return nil
}

func (r *Repository) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `
SELECT count(*) FROM orders WHERE session_id = $1
`, sessionID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
SELECT id, session_id, reference, upstream_id, upstream_number, status, payment_method,
       coupon_code, subtotal_cents, discount_cents, shipping_cents, total_cents, created_at
FROM orders
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.SessionID, &o.Reference, &o.UpstreamID, &o.UpstreamNumber,
			&o.Status, &o.PaymentMethod, &o.CouponCode, &o.SubtotalCents, &o.DiscountCents,
			&o.ShippingCents, &o.TotalCents, &o.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *Repository) GetForSession(ctx context.Context, sessionID string, id int64) (*Order, error) {
	var o Order
	err := r.db.QueryRow(ctx, `
SELECT id, session_id, reference, upstream_id, upstream_number, status, payment_method,
       coupon_code, subtotal_cents, discount_cents, shipping_cents, total_cents, created_at
FROM orders
WHERE session_id = $1 AND id = $2
`, sessionID, id).Scan(&o.ID, &o.SessionID, &o.Reference, &o.UpstreamID, &o.UpstreamNumber,
		&o.Status, &o.PaymentMethod, &o.CouponCode, &o.SubtotalCents, &o.DiscountCents,
		&o.ShippingCents, &o.TotalCents, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
