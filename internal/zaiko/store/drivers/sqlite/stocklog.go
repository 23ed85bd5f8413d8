package sqlite

import (
	"context"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
)

type stockLogRepo struct {
	q dbtx
}

func (r *stockLogRepo) Append(ctx context.Context, club string, itemID int64, amount float64, t int64) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO stock_log (club, item_id, amount, time) VALUES (?, ?, ?, ?)`,
		club, itemID, amount, t)
	return err
}

func (r *stockLogRepo) ListByItem(ctx context.Context, club string, itemID int64) ([]domain.StockEntry, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT amount, time FROM stock_log WHERE club = ? AND item_id = ? ORDER BY time`,
		club, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.StockEntry
	for rows.Next() {
		var e domain.StockEntry
		if err := rows.Scan(&e.Amount, &e.Time); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *stockLogRepo) DeleteByItem(ctx context.Context, club string, itemID int64) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM stock_log WHERE club = ? AND item_id = ?`, club, itemID)
	return err
}
