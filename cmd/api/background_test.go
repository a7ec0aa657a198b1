package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain/abandoned"
	"storefront/internal/domain/storage"
	"storefront/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAbandonedStore struct {
	records []abandoned.Checkout
	synced  []string
}

func (f *fakeAbandonedStore) Upsert(ctx context.Context, rec abandoned.Checkout) error { return nil }

func (f *fakeAbandonedStore) Delete(ctx context.Context, phone string) error { return nil }

func (f *fakeAbandonedStore) MarkSynced(ctx context.Context, phone string) error {
	f.synced = append(f.synced, phone)
	return nil
}

func (f *fakeAbandonedStore) ListOlderThan(ctx context.Context, age time.Duration, limit int) ([]abandoned.Checkout, error) {
	return f.records, nil
}

func TestSyncAbandonedCheckoutsMarksOnlySuccessfulPushes(t *testing.T) {
	// the backend rejects one phone and accepts the other
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var rec upstream.AbandonedCheckout
		require.NoError(t, json.Unmarshal(raw, &rec))
		if rec.Phone == "01700000001" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &fakeAbandonedStore{
		records: []abandoned.Checkout{
			{Phone: "01700000001", Name: "A", Items: json.RawMessage(`[]`)},
			{Phone: "01700000002", Name: "B", Items: json.RawMessage(`[{"product_id":42,"quantity":1}]`)},
		},
	}

	app := &application{
		store:    &storage.Container{Abandoned: store},
		upstream: upstream.NewClient(upstream.Config{BaseURL: srv.URL}),
		logger:   zap.NewNop().Sugar(),
	}

	app.syncAbandonedCheckouts()

	// only the accepted record is stamped; the failed one stays eligible for
	// the next sweep
	assert.Equal(t, []string{"01700000002"}, store.synced)
}
