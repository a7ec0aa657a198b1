package checkout

import (
	"testing"

	"storefront/internal/domain/carts"
	"storefront/internal/pricing"
	"storefront/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() *carts.CartView {
	vid := int64(7)
	return &carts.CartView{
		Items: []carts.CartItem{
			{
				ProductID:      1,
				VariationID:    &vid,
				Attributes:     map[string]string{"Color": "Red", "pa_size": "M"},
				Quantity:       2,
				UnitPriceCents: 1000,
			},
			{ProductID: 2, Quantity: 1, UnitPriceCents: 500},
		},
	}
}

func TestAssembleOrder(t *testing.T) {
	addr := validAddress()
	payment := PaymentMethod{ID: "cod", Title: "Cash on delivery"}

	t.Run("name split and addresses", func(t *testing.T) {
		p := AssembleOrder(sampleView(), addr, false, nil, nil, payment, "BDT", "shop.example.com")

		assert.Equal(t, "Rahim", p.Billing.FirstName)
		assert.Equal(t, "Uddin", p.Billing.LastName)
		assert.Equal(t, "Rahim", p.Shipping.FirstName)
		assert.Equal(t, addr.Address, p.Shipping.Address1)
		assert.Equal(t, "cod", p.PaymentMethod)
		assert.Equal(t, "BDT", p.Currency)
	})

	t.Run("line items carry prefixed attribute meta", func(t *testing.T) {
		p := AssembleOrder(sampleView(), addr, false, nil, nil, payment, "BDT", "shop.example.com")

		require.Len(t, p.LineItems, 2)
		line := p.LineItems[0]
		assert.Equal(t, int64(1), line.ProductID)
		require.NotNil(t, line.VariationID)
		assert.Equal(t, int64(7), *line.VariationID)

		require.Len(t, line.MetaData, 2)
		assert.Equal(t, "pa_Color", line.MetaData[0].Key)
		assert.Equal(t, "Red", line.MetaData[0].Value)
		// already-prefixed names are not double-prefixed
		assert.Equal(t, "pa_size", line.MetaData[1].Key)

		assert.Empty(t, p.LineItems[1].MetaData)
	})

	t.Run("fallback email from phone", func(t *testing.T) {
		a := addr
		a.Email = ""
		p := AssembleOrder(sampleView(), a, false, nil, nil, payment, "BDT", "shop.example.com")
		assert.Equal(t, "01712345678@shop.example.com", p.Billing.Email)
	})

	t.Run("no fallback when account requested", func(t *testing.T) {
		a := addr
		a.Email = "user@example.com"
		p := AssembleOrder(sampleView(), a, true, nil, nil, payment, "BDT", "shop.example.com")
		assert.Equal(t, "user@example.com", p.Billing.Email)
	})

	t.Run("shipping line formatted to two decimals", func(t *testing.T) {
		inst := int64(3)
		rate := &upstream.ShippingRate{
			ID: "flat_rate:3", MethodID: "flat_rate", Label: "Flat rate",
			TotalCents: 500, InstanceID: &inst,
		}
		p := AssembleOrder(sampleView(), addr, false, rate, nil, payment, "BDT", "shop.example.com")

		require.Len(t, p.ShippingLines, 1)
		assert.Equal(t, "5.00", p.ShippingLines[0].Total)
		assert.Equal(t, "Flat rate", p.ShippingLines[0].MethodTitle)
		assert.Equal(t, int64(3), *p.ShippingLines[0].InstanceID)
	})

	t.Run("coupon line only when applied", func(t *testing.T) {
		p := AssembleOrder(sampleView(), addr, false, nil, nil, payment, "BDT", "shop.example.com")
		assert.Empty(t, p.CouponLines)

		coupon := &pricing.Coupon{Code: "save10", Type: pricing.DiscountFixedCart, Amount: 1000}
		p = AssembleOrder(sampleView(), addr, false, nil, coupon, payment, "BDT", "shop.example.com")
		require.Len(t, p.CouponLines, 1)
		assert.Equal(t, "save10", p.CouponLines[0].Code)
	})
}
