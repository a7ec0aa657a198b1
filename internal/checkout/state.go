package checkout

import (
	"sync"
	"time"

	"storefront/internal/pricing"
	"storefront/internal/upstream"
)

// Checkout holds the per-session state that is deliberately NOT persisted:
// the applied coupon, the destination, the latest shipping quote and the
// selected rate. It is recreated empty each session, matching the source
// behavior of the storefront.
type Checkout struct {
	mu sync.Mutex

	address       *Address
	createAccount bool

	coupon *pricing.Coupon

	rates          []upstream.ShippingRate
	selectedRateID string
	quoteErr       string // last refresh failure; empty after a successful quote

	// Quote sequence guard: shipping quotes are async and re-entrant, and
	// without this a slow stale response could overwrite a newer one.
	// Every refresh takes a new sequence number; only the response carrying
	// the latest one is applied.
	quoteSeq   uint64
	appliedSeq uint64

	captureTimer *time.Timer

	lastActive time.Time // maintained by Manager; drives idle eviction
}

func (c *Checkout) touch() {
	c.mu.Lock()
	c.lastActive = time.Now()
	c.mu.Unlock()
}

// --- address ---

func (c *Checkout) SetAddress(addr Address, createAccount bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := addr
	c.address = &a
	c.createAccount = createAccount
}

func (c *Checkout) AddressInfo() (Address, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.address == nil {
		return Address{}, false, false
	}
	return *c.address, c.createAccount, true
}

// --- coupon ---

func (c *Checkout) ApplyCoupon(coupon *pricing.Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coupon = coupon
}

// RemoveCoupon clears coupon state unconditionally; safe to call twice.
func (c *Checkout) RemoveCoupon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coupon = nil
}

func (c *Checkout) Coupon() *pricing.Coupon {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coupon
}

// --- shipping ---

// BeginQuote reserves a sequence number for an outgoing quote request.
func (c *Checkout) BeginQuote() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quoteSeq++
	return c.quoteSeq
}

// ApplyQuote installs a quote response unless a newer request was started
// since. Returns false when the response was stale and discarded.
//
// Selection rule: keep the previously selected rate if its id is still in
// the new list; otherwise take the server-suggested rate if present;
// otherwise the first rate; otherwise none.
func (c *Checkout) ApplyQuote(seq uint64, quote *upstream.ShippingQuote) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.quoteSeq || seq <= c.appliedSeq {
		return false
	}
	c.appliedSeq = seq

	c.rates = quote.Rates
	c.quoteErr = ""

	if c.selectedRateID != "" && rateExists(quote.Rates, c.selectedRateID) {
		return true
	}

	switch {
	case quote.SelectedRateID != "" && rateExists(quote.Rates, quote.SelectedRateID):
		c.selectedRateID = quote.SelectedRateID
	case len(quote.Rates) > 0:
		c.selectedRateID = quote.Rates[0].ID
	default:
		c.selectedRateID = ""
	}
	return true
}

// ClearRates drops the quote after a failed refresh (or an empty cart). The
// failure, when there is one, is kept so the API can distinguish "quoting
// failed" from "no rates serve this destination". Same staleness guard as
// ApplyQuote.
func (c *Checkout) ClearRates(seq uint64, quoteErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.quoteSeq || seq <= c.appliedSeq {
		return
	}
	c.appliedSeq = seq
	c.rates = nil
	c.selectedRateID = ""
	c.quoteErr = ""
	if quoteErr != nil {
		c.quoteErr = quoteErr.Error()
	}
}

// QuoteError returns the failure message from the latest quote refresh, or
// "" when the current (possibly empty) rate list came from a successful one.
func (c *Checkout) QuoteError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quoteErr
}

// SelectRate is the explicit user override. Ids not in the current rate
// list are ignored.
func (c *Checkout) SelectRate(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !rateExists(c.rates, id) {
		return false
	}
	c.selectedRateID = id
	return true
}

func (c *Checkout) Rates() []upstream.ShippingRate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]upstream.ShippingRate, len(c.rates))
	copy(out, c.rates)
	return out
}

// SelectedRate returns the currently selected rate, or nil when no rate is
// selected (empty cart, no destination yet, or quote failure).
func (c *Checkout) SelectedRate() *upstream.ShippingRate {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rates {
		if c.rates[i].ID == c.selectedRateID {
			rate := c.rates[i]
			return &rate
		}
	}
	return nil
}

func rateExists(rates []upstream.ShippingRate, id string) bool {
	if id == "" {
		return false
	}
	for i := range rates {
		if rates[i].ID == id {
			return true
		}
	}
	return false
}

// --- abandoned-cart capture debounce ---

// ScheduleCapture arms (or re-arms) the debounced abandoned-checkout
// capture. Each new input event resets the delay window.
func (c *Checkout) ScheduleCapture(delay time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.captureTimer != nil {
		c.captureTimer.Stop()
	}
	c.captureTimer = time.AfterFunc(delay, fn)
}

func (c *Checkout) stopCapture() {
	if c.captureTimer != nil {
		c.captureTimer.Stop()
		c.captureTimer = nil
	}
}

// Totals is the price summary the storefront renders next to the cart.
type Totals struct {
	SubtotalCents   int64 `json:"subtotal_cents"`
	DiscountCents   int64 `json:"discount_cents"`
	ShippingCents   int64 `json:"shipping_cents"`
	GrandTotalCents int64 `json:"grand_total_cents"`
}

// ComputeTotals re-derives the money summary from the current subtotal.
// The coupon discount is recomputed (and re-clamped) here on every call, so
// ledger mutations can never leave a discount larger than the subtotal.
func (c *Checkout) ComputeTotals(subtotalCents int64) Totals {
	c.mu.Lock()
	coupon := c.coupon
	var shipping int64
	for i := range c.rates {
		if c.rates[i].ID == c.selectedRateID {
			shipping = c.rates[i].TotalCents
			break
		}
	}
	c.mu.Unlock()

	discount := pricing.Discount(coupon, subtotalCents)
	return Totals{
		SubtotalCents:   subtotalCents,
		DiscountCents:   discount,
		ShippingCents:   shipping,
		GrandTotalCents: subtotalCents - discount + shipping,
	}
}

// Manager owns the live checkout state for every session. It is created at
// server start and handed to whatever needs it; there is no package-level
// singleton.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Checkout
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Checkout)}
}

// Get returns the session's checkout state, creating it on first use. Every
// access refreshes the idle clock.
func (m *Manager) Get(sessionID string) *Checkout {
	m.mu.RLock()
	c, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		c.touch()
		return c
	}

	m.mu.Lock()
	if existing, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		existing.touch()
		return existing
	}
	c = &Checkout{lastActive: time.Now()}
	m.sessions[sessionID] = c
	m.mu.Unlock()
	return c
}

// EvictIdle tears down sessions untouched for longer than maxIdle and
// returns how many went. Sessions are otherwise removed only by Reset after
// an order, so without this sweep abandoned browsers would pile up forever.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, c := range m.sessions {
		c.mu.Lock()
		idle := c.lastActive.Before(cutoff)
		if idle {
			c.stopCapture()
		}
		c.mu.Unlock()

		if idle {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Reset tears a session's checkout state down, e.g. after a placed order.
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.sessions[sessionID]; ok {
		c.mu.Lock()
		c.stopCapture()
		c.mu.Unlock()
		delete(m.sessions, sessionID)
	}
}
