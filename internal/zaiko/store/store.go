package store

import (
	"context"
	"errors"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement it. Sub-repositories keep the surface tidy; everything
// is club-scoped at the query level so a handler can never read across
// tenants by accident.
type Store interface {
	Items() Items
	Suppliers() Suppliers
	StockLog() StockLog

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller must Commit or Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional Store with commit/rollback control.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Items interface {
	// ListByClub returns all of a club's items.
	ListByClub(ctx context.Context, club string) ([]domain.Item, error)

	// GetByID returns one item, ErrNotFound when absent.
	GetByID(ctx context.Context, club string, id int64) (domain.Item, error)

	// Create inserts an item and returns its id. Updated is set to now.
	Create(ctx context.Context, club string, item domain.Item, now int64) (int64, error)

	// Update rewrites an item's mutable fields and bumps updated.
	Update(ctx context.Context, club string, item domain.Item, now int64) error

	// SetCurrent sets only the stock level, used by bulk stock takes.
	SetCurrent(ctx context.Context, club string, id int64, amount float64) error

	// Delete removes the item row. Log entries are the caller's concern.
	Delete(ctx context.Context, club string, id int64) error

	// ListShortage returns items with current <= min.
	ListShortage(ctx context.Context, club string) ([]domain.Item, error)

	CountByClub(ctx context.Context, club string) (int64, error)
	CountShortage(ctx context.Context, club string) (int64, error)
}

type Suppliers interface {
	ListByClub(ctx context.Context, club string) ([]domain.Supplier, error)

	// ListRefs returns the compact id/name pairs.
	ListRefs(ctx context.Context, club string) ([]domain.SupplierRef, error)

	// GetName resolves a supplier id to its display name.
	GetName(ctx context.Context, club string, id int64) (string, error)

	Create(ctx context.Context, club string, s domain.Supplier, now int64) (int64, error)
	Update(ctx context.Context, club string, s domain.Supplier, now int64) error
	Delete(ctx context.Context, club string, id int64) error
	CountByClub(ctx context.Context, club string) (int64, error)
}

type StockLog interface {
	// Append records an item's stock level at a point in time.
	Append(ctx context.Context, club string, itemID int64, amount float64, t int64) error

	// ListByItem returns an item's stock history, oldest first.
	ListByItem(ctx context.Context, club string, itemID int64) ([]domain.StockEntry, error)

	// DeleteByItem drops an item's history when the item is removed.
	DeleteByItem(ctx context.Context, club string, itemID int64) error
}
