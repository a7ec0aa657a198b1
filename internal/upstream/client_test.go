package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestLookupCoupon(t *testing.T) {
	t.Run("fixed cart coupon", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coupons/save10", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{
				"code":          "save10",
				"discount_type": "fixed_cart",
				"amount":        "10.00",
			})
		})

		// mixed case and padding are normalized before the lookup
		coupon, err := client.LookupCoupon(context.Background(), "  SAVE10 ")
		require.NoError(t, err)
		assert.Equal(t, "save10", coupon.Code)
		assert.Equal(t, pricing.DiscountFixedCart, coupon.Type)
		assert.Equal(t, int64(1000), coupon.Amount)
	})

	t.Run("percent coupon", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{
				"code":          "half",
				"discount_type": "percent",
				"amount":        "50",
			})
		})

		coupon, err := client.LookupCoupon(context.Background(), "half")
		require.NoError(t, err)
		assert.Equal(t, pricing.DiscountPercent, coupon.Type)
		assert.Equal(t, int64(1000), pricing.Discount(coupon, 2000))
	})

	t.Run("unknown code", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "coupon not found"})
		})

		_, err := client.LookupCoupon(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})

	t.Run("empty code short-circuits", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})

		_, err := client.LookupCoupon(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})
}

func TestCalculateShipping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calculate-shipping", r.URL.Path)

		var req quoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "BD", req.Shipping.Country)
		assert.Len(t, req.LineItems, 1)

		json.NewEncoder(w).Encode(map[string]any{
			"rates": []map[string]any{
				{"id": "flat_rate:1", "method_id": "flat_rate", "label": "Flat rate", "total": "5.00", "instance_id": 1},
				{"id": "express:2", "method_id": "express", "label": "Express", "total": "12.50"},
			},
			"selected_rate_id": "express:2",
		})
	})

	quote, err := client.CalculateShipping(context.Background(),
		QuoteAddress{Address: "12 Main St", Country: "BD", State: "Dhaka", Postcode: "1207"},
		[]QuoteLineItem{{ProductID: 1, Quantity: 2}},
	)
	require.NoError(t, err)
	require.Len(t, quote.Rates, 2)
	assert.Equal(t, int64(500), quote.Rates[0].TotalCents)
	assert.Equal(t, int64(1250), quote.Rates[1].TotalCents)
	assert.Equal(t, "express:2", quote.SelectedRateID)
}

func TestSubmitOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/create-order", r.URL.Path)

			var payload OrderPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "cod", payload.PaymentMethod)

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"id": 991, "number": "991", "status": "processing", "total": "15.00", "currency": "BDT",
			})
		})

		order, err := client.SubmitOrder(context.Background(), OrderPayload{PaymentMethod: "cod"})
		require.NoError(t, err)
		assert.Equal(t, int64(991), order.ID)
		assert.Equal(t, "processing", order.Status)
	})

	t.Run("upstream message is preserved", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "sorry, this product is out of stock"})
		})

		_, err := client.SubmitOrder(context.Background(), OrderPayload{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "sorry, this product is out of stock", apiErr.Message)
	})
}

func TestAbandonedCheckout(t *testing.T) {
	var deleted string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/abandoned-cart", r.URL.Path)
		case http.MethodDelete:
			deleted = r.URL.Path
		}
		w.WriteHeader(http.StatusOK)
	})

	err := client.CaptureAbandonedCheckout(context.Background(), AbandonedCheckout{Phone: "01712345678"})
	require.NoError(t, err)

	err = client.DeleteAbandonedCheckout(context.Background(), "01712345678")
	require.NoError(t, err)
	assert.Equal(t, "/abandoned-cart/01712345678", deleted)
}

func TestErrorMessageFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("Bad Gateway"))
	})

	_, err := client.GetProduct(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
