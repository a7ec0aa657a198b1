package main

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/params"
	"storefront/internal/upstream"

	"github.com/go-chi/chi/v5"
)

// listProductsHandler godoc
//
//	@Summary		List catalog products
//	@Description	Proxies the backend catalog listing with pagination
//	@Tags			catalog
//	@Produce		json
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Items per page"
//	@Success		200		{array}		upstream.Product
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	list, err := app.catalog.ListProducts(r.Context(), p.Page, p.Limit)
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	if list == nil {
		list = []upstream.Product{}
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getProductHandler godoc
//
//	@Summary		Get a product
//	@Description	Returns a single product, cache-first
//	@Tags			catalog
//	@Produce		json
//	@Param			productID	path		int	true	"Product id"
//	@Success		200			{object}	upstream.Product
//	@Failure		404			{object}	error
//	@Router			/products/{productID} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid product id"))
		return
	}

	product, err := app.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, upstream.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.upstreamErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, product); err != nil {
		app.internalServerError(w, r, err)
	}
}
