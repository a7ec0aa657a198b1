package carts

import (
	"context"
	"time"
)

type Cart struct {
	ID        int64      `json:"id"`
	SessionID string     `json:"session_id"`
	Status    string     `json:"status"` // active, converted, abandoned
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID             int64             `json:"id"`
	CartID         int64             `json:"cart_id"`
	LineKey        string            `json:"line_key"`
	ProductID      int64             `json:"product_id"`
	VariationID    *int64            `json:"variation_id,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	ProductName    string            `json:"product_name"`
	Quantity       int               `json:"quantity"`
	UnitPriceCents int64             `json:"unit_price_cents"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewItem is what a handler passes into AddItem. The unit price is the
// snapshot taken from the catalog at add time; later catalog price changes
// do not touch existing lines.
type NewItem struct {
	ProductID      int64
	VariationID    *int64
	Attributes     map[string]string
	ProductName    string
	Quantity       int
	UnitPriceCents int64
}

type CartView struct {
	Cart          Cart       `json:"cart"`
	Items         []CartItem `json:"items"`
	TotalItems    int        `json:"total_items"`
	SubtotalCents int64      `json:"subtotal_cents"`
}

// TotalItems sums line quantities.
func TotalItems(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Subtotal sums unit price × quantity over all lines.
func Subtotal(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitPriceCents * int64(it.Quantity)
	}
	return total
}

type Store interface {
	GetOrCreate(ctx context.Context, sessionID string) (int64, error)
	AddItem(ctx context.Context, sessionID string, item NewItem) error
	SetItemQuantity(ctx context.Context, sessionID, lineKey string, qty int) error
	RemoveItem(ctx context.Context, sessionID, lineKey string) error
	Clear(ctx context.Context, sessionID string) error
	GetView(ctx context.Context, sessionID string) (*CartView, error)

	// Checkout / housekeeping
	MarkConverted(ctx context.Context, cartID int64) error
	MarkExpiredAsAbandoned(ctx context.Context) (int64, error)
	ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]Cart, error)
}
