package main

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/domain/abandoned"
	"storefront/internal/upstream"
)

// scheduleAbandonedCapture arms the debounced snapshot for a session. Every
// address edit or cart change re-arms it, so the snapshot fires only after
// the visitor goes quiet for the configured delay.
func (app *application) scheduleAbandonedCapture(sessionID string) {
	co := app.checkouts.Get(sessionID)

	addr, _, ok := co.AddressInfo()
	if !ok || addr.Phone == "" {
		return
	}

	co.ScheduleCapture(app.config.checkout.captureDelay, func() {
		app.captureAbandonedCheckout(sessionID)
	})
}

// captureAbandonedCheckout snapshots the mid-checkout visitor locally and
// pushes the record upstream. Both writes are best-effort: a failure is
// logged and the visitor's checkout is never disturbed.
func (app *application) captureAbandonedCheckout(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), upstream.DefaultTimeout)
	defer cancel()

	co := app.checkouts.Get(sessionID)
	addr, _, ok := co.AddressInfo()
	if !ok || addr.Phone == "" {
		return
	}

	view, err := app.store.Carts.GetView(ctx, sessionID)
	if err != nil {
		app.logger.Errorw("abandoned capture: cart read failed", "session_id", sessionID, "error", err)
		return
	}
	if view == nil || len(view.Items) == 0 {
		return
	}

	lines := make([]upstream.QuoteLineItem, 0, len(view.Items))
	for _, it := range view.Items {
		lines = append(lines, upstream.QuoteLineItem{
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			Quantity:    it.Quantity,
		})
	}

	rawItems, err := json.Marshal(lines)
	if err != nil {
		app.logger.Errorw("abandoned capture: marshal items failed", "session_id", sessionID, "error", err)
		return
	}

	if err := app.store.Abandoned.Upsert(ctx, abandoned.Checkout{
		Phone:     addr.Phone,
		SessionID: sessionID,
		Name:      addr.Name,
		Email:     addr.Email,
		Address:   addr.Address,
		State:     addr.State,
		Items:     rawItems,
	}); err != nil {
		app.logger.Errorw("abandoned capture: local upsert failed", "session_id", sessionID, "error", err)
	}

	if err := app.upstream.CaptureAbandonedCheckout(ctx, upstream.AbandonedCheckout{
		Name:      addr.Name,
		Phone:     addr.Phone,
		Email:     addr.Email,
		Address:   addr.Address,
		State:     addr.State,
		CartItems: lines,
		Timestamp: time.Now(),
	}); err != nil {
		// Left unsynced; the background sweep retries it later.
		app.logger.Warnw("abandoned capture: upstream push failed", "session_id", sessionID, "error", err)
		return
	}

	if err := app.store.Abandoned.MarkSynced(ctx, addr.Phone); err != nil {
		app.logger.Errorw("abandoned capture: mark synced failed", "session_id", sessionID, "error", err)
	}
}

// discardAbandonedCheckout removes the snapshot after a placed order, both
// locally and upstream. Best-effort.
func (app *application) discardAbandonedCheckout(phone string) {
	if phone == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), upstream.DefaultTimeout)
	defer cancel()

	if err := app.store.Abandoned.Delete(ctx, phone); err != nil {
		app.logger.Warnw("abandoned checkout local delete failed", "error", err)
	}
	if err := app.upstream.DeleteAbandonedCheckout(ctx, phone); err != nil {
		app.logger.Warnw("abandoned checkout upstream delete failed", "error", err)
	}
}
