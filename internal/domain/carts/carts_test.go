package carts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// fakeQuerier answers QueryRow from a queue and records every Exec.
type fakeQuerier struct {
	rows  []func(dest ...any) error
	execs []execCall
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, nil
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if len(f.rows) == 0 {
		return fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}
	}
	next := f.rows[0]
	f.rows = f.rows[1:]
	return fakeRow{scan: next}
}

func cartIDRow(id int64) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*int64)) = id
		return nil
	}
}

func (f *fakeQuerier) itemInserts() []execCall {
	var out []execCall
	for _, call := range f.execs {
		if strings.Contains(call.sql, "INSERT INTO cart_items") {
			out = append(out, call)
		}
	}
	return out
}

func TestAddItemMergesDuplicateSelections(t *testing.T) {
	q := &fakeQuerier{rows: []func(dest ...any) error{cartIDRow(7), cartIDRow(7)}}
	repo := NewRepository(q)

	item := NewItem{
		ProductID:      42,
		Attributes:     map[string]string{"Size": "M", "Color": "Red"},
		ProductName:    "Shirt",
		Quantity:       1,
		UnitPriceCents: 1000,
	}
	require.NoError(t, repo.AddItem(context.Background(), "sess-1", item))

	// same selection again, raw attribute spelling differs
	item.Attributes = map[string]string{" Size ": "M", "Color": " Red "}
	item.Quantity = 2
	require.NoError(t, repo.AddItem(context.Background(), "sess-1", item))

	inserts := q.itemInserts()
	require.Len(t, inserts, 2)

	// both adds target the same cart and the same line key, so the conflict
	// clause collapses them into one line with the summed quantity
	assert.Contains(t, inserts[0].sql, "ON CONFLICT (cart_id, line_key)")
	assert.Contains(t, inserts[0].sql, "quantity   = cart_items.quantity + EXCLUDED.quantity")
	assert.Equal(t, inserts[0].args[0], inserts[1].args[0], "cart id")
	assert.Equal(t, inserts[0].args[1], inserts[1].args[1], "line key")
	assert.Equal(t, "42-Color:Red|Size:M", inserts[0].args[1])
	assert.Equal(t, 1, inserts[0].args[6])
	assert.Equal(t, 2, inserts[1].args[6])
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	q := &fakeQuerier{}
	repo := NewRepository(q)

	err := repo.AddItem(context.Background(), "sess-1", NewItem{ProductID: 42, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, q.execs, "nothing may reach the database")
}
