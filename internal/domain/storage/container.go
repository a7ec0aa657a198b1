package storage

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain/abandoned"
	"storefront/internal/domain/carts"
	"storefront/internal/domain/orders"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool      *pgxpool.Pool // needed so WithTx can open transactions
	cartTTL   time.Duration
	Carts     carts.Store
	Orders    orders.Store
	Abandoned abandoned.Store
}

func NewContainer(db *pgxpool.Pool, cartTTL time.Duration) *Container {
	return &Container{
		pool:      db,
		cartTTL:   cartTTL,
		Carts:     carts.NewRepositoryWithTTL(db, cartTTL),
		Orders:    orders.NewRepository(db),
		Abandoned: abandoned.NewRepository(db),
	}
}

// Tx is a transaction-scoped set of repositories for atomic units of work,
// e.g. recording an order and converting its cart together.
type Tx struct {
	Carts     carts.Store
	Orders    orders.Store
	Abandoned abandoned.Store
}

// WithTx runs fn atomically; rollback on error, commit otherwise.
func (c *Container) WithTx(ctx context.Context, fn func(s *Tx) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	s := &Tx{
		Carts:     carts.NewRepositoryWithTTL(tx, c.cartTTL),
		Orders:    orders.NewRepository(tx),
		Abandoned: abandoned.NewRepository(tx),
	}

	if err := fn(s); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
