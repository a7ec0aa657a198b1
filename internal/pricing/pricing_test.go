package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10.00", 1000},
		{"10", 1000},
		{"7.5", 750},
		{"0.05", 5},
		{"0", 0},
		{"-3.25", -325},
		{" 12.99 ", 1299},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	for _, bad := range []string{"", "abc", "1.234", "1..2"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "10.00", FormatCents(1000))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-3.25", FormatCents(-325))
	assert.Equal(t, "0.00", FormatCents(0))
}

func TestDiscount(t *testing.T) {
	t.Run("fixed discount is flat", func(t *testing.T) {
		c := &Coupon{Code: "SAVE10", Type: DiscountFixedCart, Amount: 1000}
		assert.Equal(t, int64(1000), Discount(c, 2000))
	})

	t.Run("fixed discount never exceeds subtotal", func(t *testing.T) {
		c := &Coupon{Code: "SAVE10", Type: DiscountFixedCart, Amount: 1000}
		assert.Equal(t, int64(500), Discount(c, 500))
	})

	t.Run("percent of subtotal", func(t *testing.T) {
		c := &Coupon{Code: "HALF", Type: DiscountPercent, Amount: 5000} // 50%
		assert.Equal(t, int64(1000), Discount(c, 2000))
	})

	t.Run("hundred percent yields exactly the subtotal", func(t *testing.T) {
		c := &Coupon{Code: "FREE", Type: DiscountPercent, Amount: 10000}
		assert.Equal(t, int64(5000), Discount(c, 5000))
	})

	t.Run("fractional percent rounds half up", func(t *testing.T) {
		c := &Coupon{Code: "TINY", Type: DiscountPercent, Amount: 750} // 7.5%
		// 7.5% of 10.01 = 0.75075 -> 0.75
		assert.Equal(t, int64(75), Discount(c, 1001))
	})

	t.Run("empty cart means zero discount", func(t *testing.T) {
		c := &Coupon{Code: "SAVE10", Type: DiscountFixedCart, Amount: 1000}
		assert.Equal(t, int64(0), Discount(c, 0))
	})

	t.Run("nil coupon contributes nothing", func(t *testing.T) {
		assert.Equal(t, int64(0), Discount(nil, 2000))
	})

	t.Run("negative amounts clamp to zero", func(t *testing.T) {
		c := &Coupon{Code: "WEIRD", Type: DiscountFixedCart, Amount: -100}
		assert.Equal(t, int64(0), Discount(c, 2000))
	})

	t.Run("unknown type contributes nothing", func(t *testing.T) {
		c := &Coupon{Code: "X", Type: "bogo", Amount: 1000}
		assert.Equal(t, int64(0), Discount(c, 2000))
	})
}
