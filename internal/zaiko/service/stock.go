package service

import (
	"context"
	"time"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/store"
)

// StockService covers the stock-level side of the inventory: shortage
// reports, bulk stock takes, history, and the dashboard counters.
type StockService struct {
	Store store.Store
}

// Shortage lists items whose stock is at or below the minimum. Items
// without both bounds configured are skipped; no order size can be
// computed for them.
func (s *StockService) Shortage(ctx context.Context, club string) ([]domain.ShortageItem, error) {
	items, err := s.Store.Items().ListShortage(ctx, club)
	if err != nil {
		return nil, err
	}

	shortages := make([]domain.ShortageItem, 0, len(items))
	for _, item := range items {
		if item.Min == nil || item.Max == nil {
			continue
		}
		shortages = append(shortages, domain.ShortageItem{
			ID:       item.ID,
			Name:     item.Name,
			Location: item.Location,
			Min:      *item.Min,
			Current:  item.Current,
			Order:    *item.Max - item.Current,
		})
	}
	return shortages, nil
}

// TakeStock applies a bulk stock count: every entry updates the item's
// level and appends to its history, all within one transaction so a
// partially applied count never persists.
func (s *StockService) TakeStock(ctx context.Context, club string, updates []domain.StockUpdate) error {
	now := time.Now().Unix()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, update := range updates {
			if err := tx.Items().SetCurrent(ctx, club, update.ItemID, update.Amount); err != nil {
				return err
			}
			if err := tx.StockLog().Append(ctx, club, update.ItemID, update.Amount, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// History returns an item's recorded stock levels, oldest first.
func (s *StockService) History(ctx context.Context, club string, itemID int64) ([]domain.StockEntry, error) {
	return s.Store.StockLog().ListByItem(ctx, club, itemID)
}

// Stats summarises a club's inventory in one consistent snapshot.
func (s *StockService) Stats(ctx context.Context, club string) (domain.Stats, error) {
	var stats domain.Stats
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if stats.Items, err = tx.Items().CountByClub(ctx, club); err != nil {
			return err
		}
		if stats.Suppliers, err = tx.Suppliers().CountByClub(ctx, club); err != nil {
			return err
		}
		stats.Shortages, err = tx.Items().CountShortage(ctx, club)
		return err
	})
	return stats, err
}
