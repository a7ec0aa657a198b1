package main

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain/orders"
	"storefront/internal/params"

	"github.com/go-chi/chi/v5"
)

type orderListResponse struct {
	Orders     []orders.Order    `json:"orders"`
	Pagination params.Pagination `json:"pagination"`
}

// listOrdersHandler godoc
//
//	@Summary		List the session's orders
//	@Description	Pages through orders placed by this session, newest first
//	@Tags			orders
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Items per page"
//	@Success		200		{object}	orderListResponse
//	@Router			/store/orders [get]
func (app *application) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)
	p := params.ParsePagination(r.URL.Query())

	list, total, err := app.store.Orders.ListBySession(r.Context(), sessionID, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	if list == nil {
		list = []orders.Order{}
	}

	if err := app.jsonResponse(w, http.StatusOK, orderListResponse{
		Orders:     list,
		Pagination: p,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getOrderHandler godoc
//
//	@Summary		Get one of the session's orders
//	@Tags			orders
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			orderID	path		int	true	"Order id"
//	@Success		200		{object}	orders.Order
//	@Failure		404		{object}	error
//	@Router			/store/orders/{orderID} [get]
func (app *application) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid order id"))
		return
	}

	order, err := app.store.Orders.GetForSession(r.Context(), sessionID, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, order); err != nil {
		app.internalServerError(w, r, err)
	}
}
