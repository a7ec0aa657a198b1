package main

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/upstream"
)

type shippingResponse struct {
	Rates          []upstream.ShippingRate `json:"rates"`
	SelectedRateID string                  `json:"selected_rate_id,omitempty"`
	// QuoteError is set when the latest refresh failed; an empty Rates list
	// with no QuoteError means the destination genuinely has no options.
	QuoteError string `json:"quote_error,omitempty"`
}

// refreshShippingQuote fetches rates for the current destination and cart.
// It runs in the background; the sequence number from BeginQuote makes sure
// a slow response can never clobber a newer quote.
func (app *application) refreshShippingQuote(sessionID string) {
	co := app.checkouts.Get(sessionID)

	addr, _, ok := co.AddressInfo()
	if !ok {
		return
	}

	seq := co.BeginQuote()

	ctx, cancel := context.WithTimeout(context.Background(), upstream.DefaultTimeout)
	defer cancel()

	view, err := app.store.Carts.GetView(ctx, sessionID)
	if err != nil {
		app.logger.Errorw("shipping quote: cart read failed", "session_id", sessionID, "error", err)
		co.ClearRates(seq, errors.New("could not read the cart for a shipping quote"))
		return
	}
	if view == nil || len(view.Items) == 0 {
		co.ClearRates(seq, nil)
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

	quote, err := app.upstream.CalculateShipping(ctx, upstream.QuoteAddress{
		Address:  addr.Address,
		Country:  addr.Country,
		State:    addr.State,
		Postcode: addr.Postcode,
	}, lines)
	if err != nil {
		app.logger.Warnw("shipping quote failed", "session_id", sessionID, "error", err)
		co.ClearRates(seq, err)
		return
	}

	if !co.ApplyQuote(seq, quote) {
		app.logger.Infow("discarded stale shipping quote", "session_id", sessionID, "seq", seq)
	}
}

// getShippingHandler godoc
//
//	@Summary		Get shipping options
//	@Description	Returns the quoted rates for the current destination and which one is selected
//	@Tags			shipping
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	shippingResponse
//	@Router			/store/shipping [get]
func (app *application) getShippingHandler(w http.ResponseWriter, r *http.Request) {
	co := app.checkouts.Get(getSessionFromContext(r))

	resp := shippingResponse{
		Rates:      co.Rates(),
		QuoteError: co.QuoteError(),
	}
	if selected := co.SelectedRate(); selected != nil {
		resp.SelectedRateID = selected.ID
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type selectRateRequest struct {
	RateID string `json:"rate_id" validate:"required"`
}

// selectShippingRateHandler godoc
//
//	@Summary		Select a shipping rate
//	@Description	Switches the selected rate; ids not in the current quote are rejected
//	@Tags			shipping
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		selectRateRequest	true	"Rate id from the current quote"
//	@Success		200		{object}	cartResponse
//	@Failure		400		{object}	error
//	@Router			/store/shipping/select [post]
func (app *application) selectShippingRateHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)

	var payload selectRateRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.checkouts.Get(sessionID).SelectRate(payload.RateID) {
		app.badRequestResponse(w, r, errors.New("unknown shipping rate id"))
		return
	}

	app.respondWithCart(w, r, sessionID, http.StatusOK)
}
