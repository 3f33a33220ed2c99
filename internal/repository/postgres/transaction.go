package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lexlib/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxTxAttempts bounds reruns after a deadlock or serialization failure
const maxTxAttempts = 3

// TransactionManager runs units of work in pgx transactions carried on the context
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a transaction manager over pool
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx runs fn in a transaction. A nested call joins the caller's transaction.
// fn may run more than once, so it must not have effects outside the database.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if repositories.GetTx(ctx) != nil {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = tm.run(ctx, fn)
		if err == nil || !isRetryableTxError(err) || ctx.Err() != nil {
			return err
		}
		tm.logger.Warn("transaction conflict, retrying", "attempt", attempt, "error", err)
	}
	return err
}

func (tm *TransactionManager) run(ctx context.Context, fn repositories.TxFn) error {
	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(repositories.SetTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
