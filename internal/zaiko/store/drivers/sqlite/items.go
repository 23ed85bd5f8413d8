package sqlite

import (
	"context"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
)

type itemsRepo struct {
	q dbtx
}

const itemColumns = `id, name, location, min, max, current, supplier, link, updated`

func (r *itemsRepo) ListByClub(ctx context.Context, club string) ([]domain.Item, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE club = ? ORDER BY name`, club)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Location, &it.Min, &it.Max,
			&it.Current, &it.Supplier, &it.Link, &it.Updated); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *itemsRepo) GetByID(ctx context.Context, club string, id int64) (domain.Item, error) {
	var it domain.Item
	err := r.q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE club = ? AND id = ?`, club, id).
		Scan(&it.ID, &it.Name, &it.Location, &it.Min, &it.Max,
			&it.Current, &it.Supplier, &it.Link, &it.Updated)
	if err != nil {
		return domain.Item{}, mapNotFound(err)
	}
	return it, nil
}

func (r *itemsRepo) Create(ctx context.Context, club string, item domain.Item, now int64) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO items (club, name, location, min, max, current, supplier, link, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		club, item.Name, item.Location, item.Min, item.Max,
		item.Current, item.Supplier, item.Link, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *itemsRepo) Update(ctx context.Context, club string, item domain.Item, now int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE items
		 SET name = ?, location = ?, min = ?, max = ?, current = ?, supplier = ?, link = ?, updated = ?
		 WHERE club = ? AND id = ?`,
		item.Name, item.Location, item.Min, item.Max, item.Current,
		item.Supplier, item.Link, now, club, item.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *itemsRepo) SetCurrent(ctx context.Context, club string, id int64, amount float64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE items SET current = ? WHERE club = ? AND id = ?`, amount, club, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *itemsRepo) Delete(ctx context.Context, club string, id int64) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM items WHERE club = ? AND id = ?`, club, id)
	return err
}

func (r *itemsRepo) ListShortage(ctx context.Context, club string) ([]domain.Item, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE club = ? AND current <= min ORDER BY name`, club)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Location, &it.Min, &it.Max,
			&it.Current, &it.Supplier, &it.Link, &it.Updated); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *itemsRepo) CountByClub(ctx context.Context, club string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT count(*) FROM items WHERE club = ?`, club).Scan(&n)
	return n, err
}

func (r *itemsRepo) CountShortage(ctx context.Context, club string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT count(*) FROM items WHERE club = ? AND current <= min`, club).Scan(&n)
	return n, err
}
