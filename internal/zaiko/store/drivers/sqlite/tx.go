package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/datasektionen/zaiko/internal/zaiko/store"
)

// storeTx is a Store bound to an open transaction.
type storeTx struct {
	tx *sql.Tx
	db *sql.DB
}

func (t *storeTx) Items() store.Items         { return &itemsRepo{q: t.tx} }
func (t *storeTx) Suppliers() store.Suppliers { return &suppliersRepo{q: t.tx} }
func (t *storeTx) StockLog() store.StockLog   { return &stockLogRepo{q: t.tx} }

func (t *storeTx) Commit() error { return t.tx.Commit() }

func (t *storeTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (t *storeTx) ApplyMigrations() error {
	return errors.New("sqlite: migrations cannot run inside a transaction")
}

func (t *storeTx) Tx(ctx context.Context) (store.Tx, error) {
	return nil, errors.New("sqlite: nested transactions are not supported")
}

func (t *storeTx) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errors.New("sqlite: nested transactions are not supported")
}

func (t *storeTx) Close() error { return nil }

func (t *storeTx) Ping(ctx context.Context) error { return t.db.PingContext(ctx) }
