package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"deltaoption/pkg/errors"
)

type txKey struct{}

// TxManager runs callbacks inside a database transaction. The open
// *sqlx.Tx travels on the context, so the repositories in this package
// pick it up transparently and a lifecycle transition commits together
// with its journal entries.
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx executes fn inside a transaction: any error rolls it back,
// otherwise it commits. A call nested inside an open transaction joins
// it instead of opening a second one.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rollback failed: %v", rbErr)
		}
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// ext returns the transaction bound to ctx when present, the plain
// connection pool otherwise
func ext(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}
