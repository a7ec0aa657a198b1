package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain/carts"
	"storefront/internal/domain/storage"
	"storefront/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCartStore struct {
	added []carts.NewItem
}

func (f *fakeCartStore) GetOrCreate(ctx context.Context, sessionID string) (int64, error) {
	return 1, nil
}

func (f *fakeCartStore) AddItem(ctx context.Context, sessionID string, item carts.NewItem) error {
	if item.Quantity < 1 {
		return carts.ErrInvalidQuantity
	}
	f.added = append(f.added, item)
	return nil
}

func (f *fakeCartStore) SetItemQuantity(ctx context.Context, sessionID, lineKey string, qty int) error {
	return nil
}

func (f *fakeCartStore) RemoveItem(ctx context.Context, sessionID, lineKey string) error {
	return nil
}

func (f *fakeCartStore) Clear(ctx context.Context, sessionID string) error { return nil }

func (f *fakeCartStore) GetView(ctx context.Context, sessionID string) (*carts.CartView, error) {
	return &carts.CartView{Cart: carts.Cart{ID: 1, SessionID: sessionID, Status: "active"}}, nil
}

func (f *fakeCartStore) MarkConverted(ctx context.Context, cartID int64) error { return nil }

func (f *fakeCartStore) MarkExpiredAsAbandoned(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeCartStore) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]carts.Cart, error) {
	return nil, nil
}

func newCartTestApp(t *testing.T) (*application, *fakeCartStore) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(upstream.Product{ID: 42, Name: "Mug", Price: "4.50"})
	}))
	t.Cleanup(srv.Close)

	logger := zap.NewNop().Sugar()
	store := &fakeCartStore{}

	app := &application{
		store:     &storage.Container{Carts: store},
		checkouts: checkout.NewManager(),
		catalog:   catalog.NewService(upstream.NewClient(upstream.Config{BaseURL: srv.URL}), cache.NewNoopCache(), logger),
		logger:    logger,
	}
	return app, store
}

func addItemReq(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/v1/store/cart/items", strings.NewReader(body))
	return r.WithContext(context.WithValue(r.Context(), sessionCtx, "sess-1"))
}

func TestAddCartItemDefaultsQuantityToOne(t *testing.T) {
	app, store := newCartTestApp(t)

	rec := httptest.NewRecorder()
	app.addCartItemHandler(rec, addItemReq(`{"product_id": 42}`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, store.added, 1)
	assert.Equal(t, 1, store.added[0].Quantity)
	assert.Equal(t, int64(450), store.added[0].UnitPriceCents)
	assert.Equal(t, "Mug", store.added[0].ProductName)
}

func TestAddCartItemRejectsExplicitZeroQuantity(t *testing.T) {
	app, store := newCartTestApp(t)

	rec := httptest.NewRecorder()
	app.addCartItemHandler(rec, addItemReq(`{"product_id": 42, "quantity": 0}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.added)
}
