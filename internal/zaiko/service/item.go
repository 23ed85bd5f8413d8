package service

import (
	"context"
	"errors"
	"time"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/store"
)

// ErrInvalidItem reports an item payload with neither a name nor a
// location.
var ErrInvalidItem = errors.New("service: item needs a name or location")

// ItemService implements item CRUD for a club. Mutations that change the
// stock level also append to the stock log, atomically with the item
// write.
type ItemService struct {
	Store store.Store
}

func (s *ItemService) List(ctx context.Context, club string) ([]domain.Item, error) {
	return s.Store.Items().ListByClub(ctx, club)
}

// Add inserts a new item and records its initial stock level in the log.
func (s *ItemService) Add(ctx context.Context, club string, item domain.Item) error {
	if item.Name == "" && item.Location == "" {
		return ErrInvalidItem
	}

	now := time.Now().Unix()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, err := tx.Items().Create(ctx, club, item, now)
		if err != nil {
			return err
		}
		return tx.StockLog().Append(ctx, club, id, item.Current, now)
	})
}

// Update rewrites an item. A log entry is recorded only when the stock
// level actually changed.
func (s *ItemService) Update(ctx context.Context, club string, item domain.Item) error {
	if item.Name == "" && item.Location == "" {
		return ErrInvalidItem
	}

	now := time.Now().Unix()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Items().GetByID(ctx, club, item.ID)
		if err != nil {
			return err
		}

		if existing.Current != item.Current {
			if err := tx.StockLog().Append(ctx, club, item.ID, item.Current, now); err != nil {
				return err
			}
		}

		return tx.Items().Update(ctx, club, item, now)
	})
}

// Delete removes an item together with its stock history.
func (s *ItemService) Delete(ctx context.Context, club string, id int64) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Items().Delete(ctx, club, id); err != nil {
			return err
		}
		return tx.StockLog().DeleteByItem(ctx, club, id)
	})
}
