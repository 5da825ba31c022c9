// Package dbx holds the storage plumbing the repositories build on.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the querying subset of database/sql that repositories accept.
// *sql.DB and *sql.Tx both satisfy it, so the same repository runs a single
// statement standalone or joins a multi-repository transaction under WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction on db: commit when fn returns nil,
// rollback on error. A panic in fn rolls back and is rethrown. The engines
// use it to group a status CAS, the ledger mutation, and the journal
// finalize into one atomic unit:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if _, err := wallets(tx).Debit(ctx, walletID, total); err != nil {
//	        return err
//	    }
//	    return journal(tx).Finalize(ctx, ref, confirmed)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
