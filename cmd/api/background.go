package main

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/upstream"
)

// markAbandonedCartsEvery flips expired active carts to abandoned on a
// fixed cadence.
func (app *application) markAbandonedCartsEvery(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Run once immediately
		app.markAbandonedCarts()

		for range ticker.C {
			app.markAbandonedCarts()
		}
	}()
}

func (app *application) markAbandonedCarts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := app.store.Carts.MarkExpiredAsAbandoned(ctx)
	if err != nil {
		app.logger.Errorf("Error marking carts as abandoned: %v", err)
		return
	}
	if n > 0 {
		app.logger.Infof("Marked %d carts as abandoned at %s", n, time.Now().Format(time.RFC1123))
	}
}

// evictIdleCheckoutsEvery drops in-memory checkout state for sessions that
// have gone quiet, on the same horizon as the cart TTL.
func (app *application) evictIdleCheckoutsEvery(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if n := app.checkouts.EvictIdle(app.config.checkout.cartTTL); n > 0 {
				app.logger.Infof("Evicted %d idle checkout sessions", n)
			}
		}
	}()
}

// syncAbandonedCheckoutsEvery re-pushes locally captured checkouts that are
// old enough, covering captures whose direct upstream push failed.
func (app *application) syncAbandonedCheckoutsEvery(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			app.syncAbandonedCheckouts()
		}
	}()
}

func (app *application) syncAbandonedCheckouts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stale, err := app.store.Abandoned.ListOlderThan(ctx, app.config.checkout.captureDelay, 100)
	if err != nil {
		app.logger.Errorf("Error listing abandoned checkouts: %v", err)
		return
	}

	for _, rec := range stale {
		var lines []upstream.QuoteLineItem
		if err := json.Unmarshal(rec.Items, &lines); err != nil {
			app.logger.Errorw("abandoned sync: bad items payload", "phone", rec.Phone, "error", err)
			continue
		}

		err := app.upstream.CaptureAbandonedCheckout(ctx, upstream.AbandonedCheckout{
			Name:      rec.Name,
			Phone:     rec.Phone,
			Email:     rec.Email,
			Address:   rec.Address,
			State:     rec.State,
			CartItems: lines,
			Timestamp: rec.UpdatedAt,
		})
		if err != nil {
			app.logger.Warnw("abandoned sync: upstream push failed", "phone", rec.Phone, "error", err)
			continue
		}

		if err := app.store.Abandoned.MarkSynced(ctx, rec.Phone); err != nil {
			app.logger.Errorw("abandoned sync: mark synced failed", "phone", rec.Phone, "error", err)
		}
	}
}
