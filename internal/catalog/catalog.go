package catalog

import (
	"context"
	"errors"
	"strconv"

	"storefront/internal/cache"
	"storefront/internal/upstream"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service is the read-through catalog: product detail goes cache-first with
// the upstream proxy behind it. Cache failures are logged and ignored; the
// catalog must keep working when redis is down.
type Service struct {
	client *upstream.Client
	cache  cache.ProductCache
	logger *zap.SugaredLogger
	sfg    singleflight.Group // collapses concurrent misses for the same product
}

func NewService(client *upstream.Client, productCache cache.ProductCache, logger *zap.SugaredLogger) *Service {
	return &Service{
		client: client,
		cache:  productCache,
		logger: logger,
	}
}

func (s *Service) ListProducts(ctx context.Context, page, perPage int) ([]upstream.Product, error) {
	return s.client.ListProducts(ctx, page, perPage)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*upstream.Product, error) {
	v, err, _ := s.sfg.Do(productFlightKey(id), func() (interface{}, error) {
		p, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warnw("product cache get failed", "product_id", id, "error", err)
		}

		p, err = s.client.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		go func() {
			if err := s.cache.SetProduct(context.Background(), p); err != nil {
				s.logger.Warnw("product cache set failed", "product_id", id, "error", err)
			}
		}()

		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*upstream.Product), nil
}

// PriceSnapshot resolves the unit price (and display name) for an
// add-to-cart call: the variation price when a variation is selected,
// otherwise the product price. The returned cents become the line's
// immutable price snapshot.
func (s *Service) PriceSnapshot(ctx context.Context, productID int64, variationID *int64) (int64, string, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return 0, "", err
	}

	if variationID != nil && *variationID > 0 {
		v, err := s.client.GetVariation(ctx, productID, *variationID)
		if err != nil {
			return 0, "", err
		}
		cents, err := v.PriceCents()
		if err != nil {
			return 0, "", err
		}
		return cents, p.Name, nil
	}

	cents, err := p.PriceCents()
	if err != nil {
		return 0, "", err
	}
	return cents, p.Name, nil
}

func productFlightKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}
