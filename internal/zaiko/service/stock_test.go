package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/store"
)

func seedItem(t *testing.T, st store.Store, club string, item domain.Item) int64 {
	t.Helper()
	id, err := st.Items().Create(context.Background(), club, item, 1)
	require.NoError(t, err)
	return id
}

func TestStockShortage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	stock := &StockService{Store: st}

	seedItem(t, st, "spexet", domain.Item{
		Name: "low", Location: "A", Min: ptr(5.0), Max: ptr(20.0), Current: 2,
	})
	seedItem(t, st, "spexet", domain.Item{
		Name: "fine", Location: "A", Min: ptr(5.0), Max: ptr(20.0), Current: 15,
	})
	// At min but without a max: flagged by the store query, skipped in
	// the report since no order size can be computed.
	seedItem(t, st, "spexet", domain.Item{
		Name: "no-max", Location: "A", Min: ptr(5.0), Current: 1,
	})

	shortages, err := stock.Shortage(ctx, "spexet")
	require.NoError(t, err)
	require.Equal(t, []domain.ShortageItem{
		{ID: 1, Name: "low", Location: "A", Min: 5, Current: 2, Order: 18},
	}, shortages)
}

func TestStockTake(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("updates levels and history atomically", func(t *testing.T) {
		st := newTestStore(t)
		stock := &StockService{Store: st}

		a := seedItem(t, st, "spexet", domain.Item{Name: "a", Location: "X", Current: 1})
		b := seedItem(t, st, "spexet", domain.Item{Name: "b", Location: "X", Current: 2})

		require.NoError(t, stock.TakeStock(ctx, "spexet", []domain.StockUpdate{
			{ItemID: a, Amount: 10},
			{ItemID: b, Amount: 20},
		}))

		itemA, err := st.Items().GetByID(ctx, "spexet", a)
		require.NoError(t, err)
		require.Equal(t, 10.0, itemA.Current)

		log, err := st.StockLog().ListByItem(ctx, "spexet", b)
		require.NoError(t, err)
		require.Len(t, log, 1)
		require.Equal(t, 20.0, log[0].Amount)
	})

	t.Run("a bad entry rolls back the whole take", func(t *testing.T) {
		st := newTestStore(t)
		stock := &StockService{Store: st}

		a := seedItem(t, st, "spexet", domain.Item{Name: "a", Location: "X", Current: 1})

		err := stock.TakeStock(ctx, "spexet", []domain.StockUpdate{
			{ItemID: a, Amount: 10},
			{ItemID: 999, Amount: 5},
		})
		require.ErrorIs(t, err, store.ErrNotFound)

		// The valid entry must not have been applied.
		item, err := st.Items().GetByID(ctx, "spexet", a)
		require.NoError(t, err)
		require.Equal(t, 1.0, item.Current)

		log, err := st.StockLog().ListByItem(ctx, "spexet", a)
		require.NoError(t, err)
		require.Empty(t, log)
	})
}

func TestStockHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	stock := &StockService{Store: st}

	id := seedItem(t, st, "spexet", domain.Item{Name: "a", Location: "X"})
	require.NoError(t, st.StockLog().Append(ctx, "spexet", id, 5, 100))
	require.NoError(t, st.StockLog().Append(ctx, "spexet", id, 8, 200))

	entries, err := stock.History(ctx, "spexet", id)
	require.NoError(t, err)
	require.Equal(t, []domain.StockEntry{{Amount: 5, Time: 100}, {Amount: 8, Time: 200}}, entries)
}

func TestStockStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	stock := &StockService{Store: st}

	seedItem(t, st, "spexet", domain.Item{Name: "a", Location: "X", Min: ptr(5.0), Current: 1})
	seedItem(t, st, "spexet", domain.Item{Name: "b", Location: "X", Min: ptr(5.0), Current: 9})
	seedItem(t, st, "dkm", domain.Item{Name: "c", Location: "X"})
	_, err := st.Suppliers().Create(ctx, "spexet", domain.Supplier{Name: "G"}, 1)
	require.NoError(t, err)

	stats, err := stock.Stats(ctx, "spexet")
	require.NoError(t, err)
	require.Equal(t, domain.Stats{Items: 2, Suppliers: 1, Shortages: 1}, stats)
}
