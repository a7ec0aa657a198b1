package carts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestLineKey(t *testing.T) {
	t.Run("product only", func(t *testing.T) {
		assert.Equal(t, "42", LineKey(42, nil, nil))
	})

	t.Run("product and variation", func(t *testing.T) {
		assert.Equal(t, "42-7", LineKey(42, ptr(7), nil))
	})

	t.Run("zero variation is ignored", func(t *testing.T) {
		assert.Equal(t, "42", LineKey(42, ptr(0), nil))
	})

	t.Run("attributes are sorted", func(t *testing.T) {
		a := LineKey(42, ptr(7), map[string]string{"Size": "M", "Color": "Red"})
		b := LineKey(42, ptr(7), map[string]string{"Color": "Red", "Size": "M"})
		assert.Equal(t, a, b)
		assert.Equal(t, "42-7-Color:Red|Size:M", a)
	})

	t.Run("attribute values are trimmed", func(t *testing.T) {
		assert.Equal(t,
			LineKey(42, nil, map[string]string{"Color": "Red"}),
			LineKey(42, nil, map[string]string{" Color ": " Red "}),
		)
	})

	t.Run("padded names sort like their trimmed form", func(t *testing.T) {
		// leading whitespace sorts before letters, so ordering must happen
		// after trimming or these two diverge
		a := LineKey(42, nil, map[string]string{" Size": "M", "Color": "Red"})
		b := LineKey(42, nil, map[string]string{"Size": "M", "Color": "Red"})
		assert.Equal(t, b, a)
		assert.Equal(t, "42-Color:Red|Size:M", a)
	})

	t.Run("names that trim to the same attribute collapse", func(t *testing.T) {
		assert.Equal(t,
			"42-Size:M",
			LineKey(42, nil, map[string]string{"Size": "M", " Size ": "M"}),
		)
	})

	t.Run("different attributes give different keys", func(t *testing.T) {
		assert.NotEqual(t,
			LineKey(42, ptr(7), map[string]string{"Color": "Red"}),
			LineKey(42, ptr(7), map[string]string{"Color": "Blue"}),
		)
	})
}

func TestTotals(t *testing.T) {
	items := []CartItem{
		{Quantity: 2, UnitPriceCents: 1000},
		{Quantity: 1, UnitPriceCents: 2550},
	}

	assert.Equal(t, 3, TotalItems(items))
	assert.Equal(t, int64(4550), Subtotal(items))

	assert.Equal(t, 0, TotalItems(nil))
	assert.Equal(t, int64(0), Subtotal(nil))
}
