package abandoned

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/infra/dbx"
)

// Checkout is a snapshot of a visitor who entered contact details but has
// not placed the order yet, keyed by phone number. Upserted on a debounce
// while the visitor types; deleted after a successful order.
type Checkout struct {
	Phone     string          `json:"phone"`
	SessionID string          `json:"session_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email,omitempty"`
	Address   string          `json:"address,omitempty"`
	State     string          `json:"state,omitempty"`
	Items     json.RawMessage `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
	SyncedAt  *time.Time      `json:"synced_at,omitempty"`
}

type Store interface {
	Upsert(ctx context.Context, rec Checkout) error
	Delete(ctx context.Context, phone string) error
	MarkSynced(ctx context.Context, phone string) error
	ListOlderThan(ctx context.Context, age time.Duration, limit int) ([]Checkout, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Upsert(ctx context.Context, rec Checkout) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO abandoned_checkouts (phone, session_id, name, email, address, state, items, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (phone)
DO UPDATE SET
  session_id = EXCLUDED.session_id,
  name       = EXCLUDED.name,
  email      = EXCLUDED.email,
  address    = EXCLUDED.address,
  state      = EXCLUDED.state,
  items      = EXCLUDED.items,
  updated_at = now()
`, rec.Phone, rec.SessionID, rec.Name, rec.Email, rec.Address, rec.State, rec.Items)
	if err != nil {
		return fmt.Errorf("upsert abandoned checkout: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, phone string) error {
	_, err := r.db.Exec(ctx, `
DELETE FROM abandoned_checkouts WHERE phone = $1
`, phone)
	return err
}

// MarkSynced stamps the record after a successful upstream push so the sweep
// stops re-sending it until the snapshot changes again.
func (r *Repository) MarkSynced(ctx context.Context, phone string) error {
	_, err := r.db.Exec(ctx, `
UPDATE abandoned_checkouts SET synced_at = now() WHERE phone = $1
`, phone)
	return err
}

// ListOlderThan returns settled records whose latest snapshot has not been
// pushed upstream yet; an upsert moves updated_at past synced_at and
// re-qualifies the row.
func (r *Repository) ListOlderThan(ctx context.Context, age time.Duration, limit int) ([]Checkout, error) {
	rows, err := r.db.Query(ctx, `
SELECT phone, session_id, name, email, address, state, items, updated_at, synced_at
FROM abandoned_checkouts
WHERE updated_at <= $1
  AND (synced_at IS NULL OR synced_at < updated_at)
ORDER BY updated_at
LIMIT $2
`, time.Now().Add(-age), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Checkout
	for rows.Next() {
		var c Checkout
		if err := rows.Scan(&c.Phone, &c.SessionID, &c.Name, &c.Email, &c.Address, &c.State, &c.Items, &c.UpdatedAt, &c.SyncedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
