package main

import (
	"errors"
	"net/http"

	"storefront/internal/checkout"
	"storefront/internal/domain/orders"
	"storefront/internal/domain/storage"
	"storefront/internal/mailer"
	"storefront/internal/pricing"
)

type setAddressRequest struct {
	Address       checkout.Address `json:"address"`
	CreateAccount bool             `json:"create_account"`
}

// setAddressHandler godoc
//
//	@Summary		Set the checkout destination
//	@Description	Stores the address for this session and refreshes the shipping quote in the background
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		setAddressRequest	true	"Destination and contact details"
//	@Success		200		{object}	checkout.ValidationResult
//	@Failure		422		{object}	checkout.ValidationResult
//	@Router			/store/checkout/address [post]
func (app *application) setAddressHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)

	var payload setAddressRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	result := checkout.ValidateAddress(payload.Address, payload.CreateAccount)

	// The address is stored even when invalid so the visitor's progress (and
	// the abandoned-cart snapshot) survives a typo; only order placement is
	// gated on a clean validation.
	app.checkouts.Get(sessionID).SetAddress(payload.Address, payload.CreateAccount)

	go app.refreshShippingQuote(sessionID)
	app.scheduleAbandonedCapture(sessionID)

	status := http.StatusOK
	if !result.OK() {
		status = http.StatusUnprocessableEntity
	}
	if err := app.jsonResponse(w, status, result); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getTotalsHandler godoc
//
//	@Summary		Get the money summary
//	@Description	Subtotal, discount, shipping and grand total for the session
//	@Tags			checkout
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	checkout.Totals
//	@Router			/store/checkout/totals [get]
func (app *application) getTotalsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)

	view, err := app.store.Carts.GetView(r.Context(), sessionID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	var subtotal int64
	if view != nil {
		subtotal = view.SubtotalCents
	}

	totals := app.checkouts.Get(sessionID).ComputeTotals(subtotal)
	if err := app.jsonResponse(w, http.StatusOK, totals); err != nil {
		app.internalServerError(w, r, err)
	}
}

type placeOrderResponse struct {
	Order          orders.Order `json:"order"`
	UpstreamNumber string       `json:"upstream_number"`
}

// placeOrderHandler godoc
//
//	@Summary		Place the order
//	@Description	Validates the address, assembles the payload and submits it to the backend; on success the cart converts and checkout state resets
//	@Tags			checkout
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		201	{object}	placeOrderResponse
//	@Failure		400	{object}	error
//	@Failure		422	{object}	checkout.ValidationResult
//	@Router			/store/checkout/order [post]
func (app *application) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionFromContext(r)
	co := app.checkouts.Get(sessionID)

	addr, createAccount, ok := co.AddressInfo()
	if !ok {
		app.badRequestResponse(w, r, errors.New("checkout address is required"))
		return
	}

	if result := checkout.ValidateAddress(addr, createAccount); !result.OK() {
		if err := app.jsonResponse(w, http.StatusUnprocessableEntity, result); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	view, err := app.store.Carts.GetView(r.Context(), sessionID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if view == nil || len(view.Items) == 0 {
		app.badRequestResponse(w, r, errors.New("cart is empty"))
		return
	}

	selected := co.SelectedRate()
	coupon := co.Coupon()

	payload := checkout.AssembleOrder(
		view,
		addr,
		createAccount,
		selected,
		coupon,
		checkout.PaymentMethod{
			ID:    app.config.checkout.paymentMethodID,
			Title: app.config.checkout.paymentMethodTitle,
		},
		app.config.checkout.currency,
		app.config.checkout.fallbackEmailDomain,
	)

	created, err := app.upstream.SubmitOrder(r.Context(), payload)
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	reference, err := app.refs.Generate(created.ID)
	if err != nil {
		app.logger.Errorw("order reference generation failed", "upstream_id", created.ID, "error", err)
		reference = created.Number
	}

	totals := co.ComputeTotals(view.SubtotalCents)

	order := orders.Order{
		SessionID:      sessionID,
		Reference:      reference,
		UpstreamID:     created.ID,
		UpstreamNumber: created.Number,
		Status:         created.Status,
		PaymentMethod:  app.config.checkout.paymentMethodID,
		SubtotalCents:  totals.SubtotalCents,
		DiscountCents:  totals.DiscountCents,
		ShippingCents:  totals.ShippingCents,
		TotalCents:     totals.GrandTotalCents,
	}
	if coupon != nil {
		code := coupon.Code
		order.CouponCode = &code
	}

	// Upstream accepted the order; recording it and converting the cart must
	// land together.
	err = app.store.WithTx(r.Context(), func(s *storage.Tx) error {
		if err := s.Orders.Record(r.Context(), &order); err != nil {
			return err
		}
		return s.Carts.MarkConverted(r.Context(), view.Cart.ID)
	})
	if err != nil {
		// The backend has the order even though the local record failed; log
		// loudly rather than telling the visitor their order failed.
		app.logger.Errorw("order placed upstream but local record failed",
			"session_id", sessionID, "upstream_id", created.ID, "error", err)
	}

	app.checkouts.Reset(sessionID)

	// Best-effort side effects; the order response never waits for these and
	// their failures are only logged.
	go app.discardAbandonedCheckout(addr.Phone)
	if addr.Email != "" {
		go app.sendOrderConfirmation(addr.Name, addr.Email, order, totals)
	}

	if err := app.jsonResponse(w, http.StatusCreated, placeOrderResponse{
		Order:          order,
		UpstreamNumber: created.Number,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) sendOrderConfirmation(name, email string, order orders.Order, totals checkout.Totals) {
	data := struct {
		Name      string
		Reference string
		Subtotal  string
		Discount  string
		Shipping  string
		Total     string
	}{
		Name:      name,
		Reference: order.Reference,
		Subtotal:  pricing.FormatCents(totals.SubtotalCents),
		Shipping:  pricing.FormatCents(totals.ShippingCents),
		Total:     pricing.FormatCents(totals.GrandTotalCents),
	}
	if totals.DiscountCents > 0 {
		data.Discount = pricing.FormatCents(totals.DiscountCents)
	}

	status, err := app.mailer.Send(mailer.OrderConfirmationTemplate, name, email, data)
	if err != nil {
		app.logger.Errorw("order confirmation email failed", "email", email, "error", err)
		return
	}
	app.logger.Infow("order confirmation email sent", "email", email, "status", status)
}
