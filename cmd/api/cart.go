package main

import (
	"errors"
	"net/http"

	"storefront/internal/checkout"
	"storefront/internal/domain/carts"
	"storefront/internal/upstream"

	"github.com/go-chi/chi/v5"
)

type cartResponse struct {
	Cart   *carts.CartView `json:"cart"`
	Totals checkout.Totals `json:"totals"`
}

// emptyView stands in when the session has no active cart yet, so the
// frontend always gets the same shape back.
func emptyView(sessionID string) *carts.CartView {
	return &carts.CartView{
		Cart:  carts.Cart{SessionID: sessionID, Status: "active"},
		Items: []carts.CartItem{},
	}
}

func (app *application) respondWithCart(w http.ResponseWriter, r *http.Request, sessionID string, status int) {
	view, err := app.store.Carts.GetView(r.Context(), sessionID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if view == nil {
		view = emptyView(sessionID)
	}

	totals := app.checkouts.Get(sessionID).ComputeTotals(view.SubtotalCents)

	if err := app.jsonResponse(w, status, cartResponse{Cart: view, Totals: totals}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// afterCartMutation re-derives everything that depends on the cart contents:
// the shipping quote (when a destination is known) and the abandoned-cart
// snapshot. Both are async; the mutation response never waits for them.
func (app *application) afterCartMutation(sessionID string) {
	co := app.checkouts.Get(sessionID)
	if _, _, ok := co.AddressInfo(); !ok {
		return
	}
	go app.refreshShippingQuote(sessionID)
	app.scheduleAbandonedCapture(sessionID)
}

// getCartHandler godoc
//
//	@Summary		Get the session cart
//	@Description	Returns the cart lines plus the current money summary
//	@Tags			cart
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	cartResponse
//	@Router			/store/cart [get]
func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	app.respondWithCart(w, r, getSessionFromContext(r), http.StatusOK)
}

type addItemRequest struct {
	ProductID   int64             `json:"product_id" validate:"required,gt=0"`
	VariationID *int64            `json:"variation_id"`
	Attributes  map[string]string `json:"attributes"`
	Quantity    *int              `json:"quantity"`
}

// requestedQuantity applies the add-to-cart default: an omitted quantity
// means one. An explicit zero or negative value is returned as-is so the
// handler can reject it.
func requestedQuantity(q *int) int {
	if q == nil {
		return 1
	}
	return *q
}

// addCartItemHandler godoc
//
//	@Summary		Add a product to the cart
//	@Description	Adds a line (or bumps quantity when the same selection already exists) at the current catalog price
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		addItemRequest	true	"Line to add"
//	@Success		200		{object}	cartResponse
//	@Failure		400		{object}	error
//	@Router			/store/cart/items [post]
func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)

	var payload addItemRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	qty := requestedQuantity(payload.Quantity)
	if qty < 1 {
		app.badRequestResponse(w, r, carts.ErrInvalidQuantity)
		return
	}

	unitPrice, name, err := app.catalog.PriceSnapshot(r.Context(), payload.ProductID, payload.VariationID)
	if err != nil {
		switch {
		case errors.Is(err, upstream.ErrProductNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.upstreamErrorResponse(w, r, err)
		}
		return
	}

	err = app.store.Carts.AddItem(r.Context(), sessionID, carts.NewItem{
		ProductID:      payload.ProductID,
		VariationID:    payload.VariationID,
		Attributes:     payload.Attributes,
		ProductName:    name,
		Quantity:       qty,
		UnitPriceCents: unitPrice,
	})
	if err != nil {
		if errors.Is(err, carts.ErrInvalidQuantity) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.afterCartMutation(sessionID)
	app.respondWithCart(w, r, sessionID, http.StatusOK)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// updateCartItemHandler godoc
//
//	@Summary		Set a line's quantity
//	@Description	Overwrites the quantity for a cart line; zero or less removes the line
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			lineKey	path		string				true	"Cart line key"
//	@Param			payload	body		updateItemRequest	true	"New quantity"
//	@Success		200		{object}	cartResponse
//	@Router			/store/cart/items/{lineKey} [patch]
func (app *application) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)
	lineKey := chi.URLParam(r, "lineKey")

	var payload updateItemRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Carts.SetItemQuantity(r.Context(), sessionID, lineKey, payload.Quantity); err != nil {
		if errors.Is(err, carts.ErrCartNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.afterCartMutation(sessionID)
	app.respondWithCart(w, r, sessionID, http.StatusOK)
}

// removeCartItemHandler godoc
//
//	@Summary		Remove a cart line
//	@Description	Deletes the line; removing an absent line is not an error
//	@Tags			cart
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			lineKey	path		string	true	"Cart line key"
//	@Success		200		{object}	cartResponse
//	@Router			/store/cart/items/{lineKey} [delete]
func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)
	lineKey := chi.URLParam(r, "lineKey")

	if err := app.store.Carts.RemoveItem(r.Context(), sessionID, lineKey); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.afterCartMutation(sessionID)
	app.respondWithCart(w, r, sessionID, http.StatusOK)
}

// clearCartHandler godoc
//
//	@Summary		Empty the cart
//	@Description	Removes every line; the applied coupon stays and simply discounts nothing
//	@Tags			cart
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	cartResponse
//	@Router			/store/cart [delete]
func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)

	if err := app.store.Carts.Clear(r.Context(), sessionID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.afterCartMutation(sessionID)
	app.respondWithCart(w, r, sessionID, http.StatusOK)
}
