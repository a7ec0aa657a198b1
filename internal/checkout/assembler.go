package checkout

import (
	"sort"
	"strings"

	"storefront/internal/domain/carts"
	"storefront/internal/pricing"
	"storefront/internal/upstream"
)

// PaymentMethod identifies how the visitor wants to pay, as configured on
// the backend (e.g. "cod" / "Cash on delivery").
type PaymentMethod struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AssembleOrder is the pure transformation from ledger + address + selected
// shipping + coupon into the upstream order payload. The backend remains
// the source of truth for final pricing and tax.
//
// When the visitor gave no email and did not ask for an account, a fallback
// address is synthesized from the phone number and the configured domain so
// the backend always has a contact field.
func AssembleOrder(
	view *carts.CartView,
	addr Address,
	createAccount bool,
	selected *upstream.ShippingRate,
	coupon *pricing.Coupon,
	payment PaymentMethod,
	currency string,
	fallbackEmailDomain string,
) upstream.OrderPayload {
	first, last := SplitName(addr.Name)

	email := strings.TrimSpace(addr.Email)
	if email == "" && !createAccount {
		email = addr.Phone + "@" + fallbackEmailDomain
	}

	payload := upstream.OrderPayload{
		Billing: upstream.OrderBilling{
			FirstName: first,
			LastName:  last,
			Phone:     addr.Phone,
			Email:     email,
			Address1:  addr.Address,
			Country:   addr.Country,
			State:     addr.State,
			Postcode:  addr.Postcode,
		},
		Shipping: upstream.OrderShipping{
			FirstName: first,
			LastName:  last,
			Address1:  addr.Address,
			Country:   addr.Country,
			State:     addr.State,
			Postcode:  addr.Postcode,
		},
		PaymentMethod:      payment.ID,
		PaymentMethodTitle: payment.Title,
		Currency:           currency,
	}

	for _, it := range view.Items {
		line := upstream.OrderLineItem{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			VariationID: it.VariationID,
		}
		for _, name := range sortedAttrNames(it.Attributes) {
			line.MetaData = append(line.MetaData, upstream.MetaData{
				Key:   attributeKey(name),
				Value: it.Attributes[name],
			})
		}
		payload.LineItems = append(payload.LineItems, line)
	}

	if selected != nil {
		payload.ShippingLines = []upstream.OrderShippingLine{{
			MethodID:    selected.MethodID,
			MethodTitle: selected.Label,
			Total:       pricing.FormatCents(selected.TotalCents),
			InstanceID:  selected.InstanceID,
		}}
	}

	if coupon != nil {
		payload.CouponLines = []upstream.OrderCouponLine{{Code: coupon.Code}}
	}

	return payload
}

// attributeKey prefixes attribute names with "pa_" the way the backend's
// product attribute taxonomy expects, unless the name already carries it.
func attributeKey(name string) string {
	if strings.HasPrefix(strings.ToLower(name), "pa_") {
		return name
	}
	return "pa_" + name
}

func sortedAttrNames(attrs map[string]string) []string {
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
