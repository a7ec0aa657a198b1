package pricing

// DiscountType mirrors the upstream coupon contract.
type DiscountType string

const (
	DiscountPercent   DiscountType = "percent"
	DiscountFixedCart DiscountType = "fixed_cart"
)

// Coupon is a discount rule as fetched from the upstream store.
// For fixed_cart coupons Amount is cents; for percent coupons Amount is
// hundredths of a percent (so "7.5" becomes 750). That keeps both kinds in
// integers without losing upstream precision.
type Coupon struct {
	Code   string       `json:"code"`
	Type   DiscountType `json:"discount_type"`
	Amount int64        `json:"amount"`
}

// Discount computes the coupon's discount against a subtotal, clamped to
// [0, subtotal]. A nil coupon contributes nothing. Must be re-evaluated after
// every cart mutation: a percent discount shrinks with the subtotal, and a
// fixed discount may no longer fit under it.
func Discount(c *Coupon, subtotalCents int64) int64 {
	if c == nil || subtotalCents <= 0 {
		return 0
	}

	var d int64
	switch c.Type {
	case DiscountPercent:
		// round half up on the half-cent
		d = (subtotalCents*c.Amount + 5000) / 10000
	case DiscountFixedCart:
		d = c.Amount
	default:
		return 0
	}

	if d < 0 {
		return 0
	}
	if d > subtotalCents {
		return subtotalCents
	}
	return d
}
