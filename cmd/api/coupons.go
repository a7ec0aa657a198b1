package main

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/upstream"
)

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// applyCouponHandler godoc
//
//	@Summary		Apply a coupon
//	@Description	Looks the code up on the backend and applies it to the session; only one coupon is active at a time
//	@Tags			coupon
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		applyCouponRequest	true	"Coupon code"
//	@Success		200		{object}	cartResponse
//	@Failure		404		{object}	error
//	@Router			/store/coupon [post]
func (app *application) applyCouponHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)

	var payload applyCouponRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(payload.Code) == "" {
		app.badRequestResponse(w, r, errors.New("coupon code is required"))
		return
	}

	coupon, err := app.upstream.LookupCoupon(r.Context(), payload.Code)
	if err != nil {
		// A failed apply leaves no coupon behind, including a previously
		// applied one the visitor was trying to replace.
		app.checkouts.Get(sessionID).RemoveCoupon()
		switch {
		case errors.Is(err, upstream.ErrCouponNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.upstreamErrorResponse(w, r, err)
		}
		return
	}

	// Applying to an empty cart is allowed; the discount stays at zero until
	// items arrive.
	app.checkouts.Get(sessionID).ApplyCoupon(coupon)

	app.respondWithCart(w, r, sessionID, http.StatusOK)
}

// removeCouponHandler godoc
//
//	@Summary		Remove the applied coupon
//	@Description	Clears coupon state; removing when none is applied is not an error
//	@Tags			coupon
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	cartResponse
//	@Router			/store/coupon [delete]
func (app *application) removeCouponHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)

	app.checkouts.Get(sessionID).RemoveCoupon()

	app.respondWithCart(w, r, sessionID, http.StatusOK)
}
