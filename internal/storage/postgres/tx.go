// Package postgres implements the family and invitation stores on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"familyhub/internal/storage"
	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// TxRunner opens a database transaction per RunInTx call and hands it to the
// stores through the context.
type TxRunner struct {
	db      *sql.DB
	stores  storage.Stores
	timeout time.Duration
}

func NewTxRunner(db *sql.DB, timeout time.Duration) *TxRunner {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &TxRunner{
		db:      db,
		stores:  storage.Stores{Families: NewFamilyStore(db), Invitations: NewInvitationStore(db)},
		timeout: timeout,
	}
}

// Stores returns the stores bound to this runner's database.
func (r *TxRunner) Stores() storage.Stores { return r.stores }

func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, stores storage.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := tx.From(ctx); ok {
		return fn(ctx, r.stores)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		if ctx.Err() != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx), r.stores); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		if ctx.Err() != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted before commit")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}
