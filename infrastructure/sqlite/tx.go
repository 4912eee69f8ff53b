package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

var errNotOpen = errors.New("sqlite store is not open")

// TxFunc runs inside a transaction; returning an error rolls it back.
type TxFunc func(ctx context.Context, tx bun.Tx) error

// WithWriteTx runs fn on the single writer connection.
func (db *DB) WithWriteTx(ctx context.Context, fn TxFunc) error {
	if db == nil || db.W == nil {
		return errNotOpen
	}
	return db.W.RunInTx(ctx, &sql.TxOptions{}, fn)
}

// WithReadTx runs fn on the read-only pool.
func (db *DB) WithReadTx(ctx context.Context, fn TxFunc) error {
	if db == nil || db.R == nil {
		return errNotOpen
	}
	return db.R.RunInTx(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}
