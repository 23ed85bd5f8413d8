package sqlite

import (
	"context"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
)

type suppliersRepo struct {
	q dbtx
}

func (r *suppliersRepo) ListByClub(ctx context.Context, club string) ([]domain.Supplier, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, link, notes, username, password, updated
		 FROM suppliers WHERE club = ? ORDER BY name`, club)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Link, &s.Notes,
			&s.Username, &s.Password, &s.Updated); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *suppliersRepo) ListRefs(ctx context.Context, club string) ([]domain.SupplierRef, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name FROM suppliers WHERE club = ? ORDER BY name`, club)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []domain.SupplierRef
	for rows.Next() {
		var ref domain.SupplierRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *suppliersRepo) GetName(ctx context.Context, club string, id int64) (string, error) {
	var name string
	err := r.q.QueryRowContext(ctx,
		`SELECT name FROM suppliers WHERE club = ? AND id = ?`, club, id).Scan(&name)
	if err != nil {
		return "", mapNotFound(err)
	}
	return name, nil
}

func (r *suppliersRepo) Create(ctx context.Context, club string, s domain.Supplier, now int64) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO suppliers (club, name, link, notes, username, password, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		club, s.Name, s.Link, s.Notes, s.Username, s.Password, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *suppliersRepo) Update(ctx context.Context, club string, s domain.Supplier, now int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE suppliers
		 SET name = ?, link = ?, notes = ?, username = ?, password = ?, updated = ?
		 WHERE club = ? AND id = ?`,
		s.Name, s.Link, s.Notes, s.Username, s.Password, now, club, s.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *suppliersRepo) Delete(ctx context.Context, club string, id int64) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM suppliers WHERE club = ? AND id = ?`, club, id)
	return err
}

func (r *suppliersRepo) CountByClub(ctx context.Context, club string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT count(*) FROM suppliers WHERE club = ?`, club).Scan(&n)
	return n, err
}
