package carts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be >= 1")
	ErrCartNotFound    = errors.New("cart not found")
)

type Repository struct {
	db  dbx.Querier
	ttl time.Duration
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q, ttl: 7 * 24 * time.Hour}
}

func NewRepositoryWithTTL(q dbx.Querier, ttl time.Duration) *Repository {
	return &Repository{db: q, ttl: ttl}
}

func (r *Repository) bumpTTL(ctx context.Context, cartID int64) {
	_, _ = r.db.Exec(ctx, `
UPDATE carts
SET expires_at = $2,
    updated_at = now()
WHERE id = $1
  AND status = 'active'
`, cartID, time.Now().Add(r.ttl))
}

// GetOrCreate returns the session's active cart id, creating one if needed.
//
// There is a partial unique index on (session_id) WHERE status = 'active',
// so two concurrent first requests for the same session race on the insert;
// the loser fetches the winning row and returns it.
func (r *Repository) GetOrCreate(ctx context.Context, sessionID string) (int64, error) {
	const maxAttempts = 2

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		id, ok, err := r.selectActiveCart(ctx, sessionID)
		if err != nil {
			return 0, err
		}
		if ok {
			return id, nil
		}

		err = r.db.QueryRow(ctx, `
INSERT INTO carts (session_id, status, expires_at)
VALUES ($1, 'active', $2)
RETURNING id
`, sessionID, time.Now().Add(r.ttl)).Scan(&id)

		if err == nil {
			return id, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// lost the race; loop once more and pick up the winner
			continue
		}

		return 0, fmt.Errorf("create cart: %w", err)
	}

	return 0, fmt.Errorf("get or create cart: no cart after conflict")
}

func (r *Repository) selectActiveCart(ctx context.Context, sessionID string) (int64, bool, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
SELECT id
FROM carts
WHERE session_id = $1
  AND status = 'active'
  AND (expires_at IS NULL OR expires_at > now())
ORDER BY updated_at DESC
LIMIT 1
`, sessionID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// AddItem appends a line or, when the derived line key already exists in the
// cart, increments that line's quantity. The unit price of an existing line
// is left untouched: it was snapshotted when the line was first added.
func (r *Repository) AddItem(ctx context.Context, sessionID string, item NewItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if item.ProductID <= 0 {
		return fmt.Errorf("product id is required")
	}

	cartID, err := r.GetOrCreate(ctx, sessionID)
	if err != nil {
		return err
	}

	key := LineKey(item.ProductID, item.VariationID, item.Attributes)

	attrs, err := json.Marshal(item.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	_, err = r.db.Exec(ctx, `
INSERT INTO cart_items
  (cart_id, line_key, product_id, variation_id, attributes, product_name, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (cart_id, line_key)
DO UPDATE SET
  quantity   = cart_items.quantity + EXCLUDED.quantity,
  updated_at = now()
`, cartID, key, item.ProductID, item.VariationID, attrs, item.ProductName, item.Quantity, item.UnitPriceCents)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}

	r.bumpTTL(ctx, cartID)
	return nil
}

// SetItemQuantity overwrites a line's quantity; qty <= 0 removes the line.
// Unknown line keys are a no-op either way.
func (r *Repository) SetItemQuantity(ctx context.Context, sessionID, lineKey string, qty int) error {
	if qty <= 0 {
		return r.RemoveItem(ctx, sessionID, lineKey)
	}

	cartID, ok, err := r.selectActiveCart(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCartNotFound
	}

	_, err = r.db.Exec(ctx, `
UPDATE cart_items
SET quantity = $3, updated_at = now()
WHERE cart_id = $1 AND line_key = $2
`, cartID, lineKey, qty)
	if err != nil {
		return fmt.Errorf("set item quantity: %w", err)
	}

	r.bumpTTL(ctx, cartID)
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, sessionID, lineKey string) error {
	cartID, ok, err := r.selectActiveCart(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return nil // no cart, nothing to remove
	}

	_, err = r.db.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = $1 AND line_key = $2
`, cartID, lineKey)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	r.bumpTTL(ctx, cartID)
	return nil
}

func (r *Repository) Clear(ctx context.Context, sessionID string) error {
	cartID, ok, err := r.selectActiveCart(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	_, err = r.db.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = $1
`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	r.bumpTTL(ctx, cartID)
	return nil
}

// GetView returns the session's active cart with lines and derived totals,
// or nil when the session has no active cart yet.
func (r *Repository) GetView(ctx context.Context, sessionID string) (*CartView, error) {
	var cart Cart
	err := r.db.QueryRow(ctx, `
SELECT id, session_id, status, expires_at, created_at, updated_at
FROM carts
WHERE session_id = $1
  AND status = 'active'
  AND (expires_at IS NULL OR expires_at > now())
ORDER BY updated_at DESC
LIMIT 1
`, sessionID).Scan(&cart.ID, &cart.SessionID, &cart.Status, &cart.ExpiresAt, &cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.Query(ctx, `
SELECT id, cart_id, line_key, product_id, variation_id, attributes, product_name,
       quantity, unit_price_cents, created_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at, id
`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	view := &CartView{Cart: cart}
	for rows.Next() {
		var it CartItem
		var attrs []byte
		if err := rows.Scan(&it.ID, &it.CartID, &it.LineKey, &it.ProductID, &it.VariationID,
			&attrs, &it.ProductName, &it.Quantity, &it.UnitPriceCents, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &it.Attributes); err != nil {
				return nil, fmt.Errorf("unmarshal attributes: %w", err)
			}
		}
		view.Items = append(view.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	view.TotalItems = TotalItems(view.Items)
	view.SubtotalCents = Subtotal(view.Items)
	return view, nil
}

func (r *Repository) MarkConverted(ctx context.Context, cartID int64) error {
	_, err := r.db.Exec(ctx, `
UPDATE carts
SET status = 'converted', updated_at = now()
WHERE id = $1
`, cartID)
	return err
}

func (r *Repository) MarkExpiredAsAbandoned(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
UPDATE carts
SET status = 'abandoned', updated_at = now()
WHERE status = 'active'
  AND expires_at IS NOT NULL
  AND expires_at <= now()
`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListStale returns active carts untouched for longer than olderThan, used by
// the abandoned-cart sweeper.
func (r *Repository) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]Cart, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, session_id, status, expires_at, created_at, updated_at
FROM carts
WHERE status = 'active'
  AND updated_at <= $1
ORDER BY updated_at
LIMIT $2
`, time.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cart
	for rows.Next() {
		var c Cart
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Status, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
