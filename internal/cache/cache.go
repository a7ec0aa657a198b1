package cache

import (
	"context"
	"errors"

	"storefront/internal/upstream"
)

// ProductCache shields the upstream catalog from repeated reads; listings
// and add-to-cart price snapshots hit it first.
type ProductCache interface {
	GetProduct(ctx context.Context, id int64) (*upstream.Product, error)
	SetProduct(ctx context.Context, p *upstream.Product) error
	Delete(ctx context.Context, id int64) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache misses on every read; used when redis is disabled.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (NoopCache) GetProduct(ctx context.Context, id int64) (*upstream.Product, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) SetProduct(ctx context.Context, p *upstream.Product) error { return nil }

func (NoopCache) Delete(ctx context.Context, id int64) error { return nil }
