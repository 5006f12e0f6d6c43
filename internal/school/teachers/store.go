package teachers

import (
	"context"
	"database/sql"
	"errors"

	"absensi-backend/internal/platform/db"
	"absensi-backend/internal/platform/ids"
)

type TeacherStore interface {
	Insert(ctx context.Context, t Teacher) error
	Update(ctx context.Context, t Teacher) (int64, error)
	DeleteGuarded(ctx context.Context, id string) (deleted bool, homeroomCount int64, err error)
	GetByID(ctx context.Context, id string) (*Teacher, error)
	List(ctx context.Context) ([]Teacher, error)
}

type Store struct{ db *sql.DB }

func NewStore(database *sql.DB) TeacherStore { return &Store{db: database} }

func (s *Store) Insert(ctx context.Context, t Teacher) error {
	const q = `
INSERT INTO teachers (id, name, employee_no, phone, created_at, updated_at)
VALUES (?, ?, ?, ?, NOW(6), NOW(6))
`
	_, err := s.db.ExecContext(ctx, q, ids.Normalize(t.ID), t.Name, strOrNil(t.EmployeeNo), strOrNil(t.Phone))
	return err
}

func (s *Store) Update(ctx context.Context, t Teacher) (int64, error) {
	const q = `
UPDATE teachers
SET name = ?, employee_no = ?, phone = ?, updated_at = NOW(6)
WHERE id = ?
`
	res, err := s.db.ExecContext(ctx, q, t.Name, strOrNil(t.EmployeeNo), strOrNil(t.Phone), ids.Normalize(t.ID))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteGuarded refuses while the teacher is still homeroom of any class,
// checked and deleted in one transaction.
func (s *Store) DeleteGuarded(ctx context.Context, id string) (bool, int64, error) {
	var (
		deleted       bool
		homeroomCount int64
	)
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		norm := ids.Normalize(id)
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM classes WHERE homeroom_teacher_id = ?`, norm,
		).Scan(&homeroomCount); err != nil {
			return err
		}
		if homeroomCount > 0 {
			return nil
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM teachers WHERE id = ?`, norm)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	return deleted, homeroomCount, err
}

func (s *Store) GetByID(ctx context.Context, id string) (*Teacher, error) {
	const q = `
SELECT id, name, employee_no, phone, created_at, updated_at
FROM teachers
WHERE id = ?
LIMIT 1
`
	var r teacherRow
	err := s.db.QueryRowContext(ctx, q, ids.Normalize(id)).Scan(
		&r.ID, &r.Name, &r.EmployeeNo, &r.Phone, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func (s *Store) List(ctx context.Context) ([]Teacher, error) {
	const q = `
SELECT id, name, employee_no, phone, created_at, updated_at
FROM teachers
ORDER BY created_at DESC
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Teacher, 0, 16)
	for rows.Next() {
		var r teacherRow
		if err := rows.Scan(&r.ID, &r.Name, &r.EmployeeNo, &r.Phone, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

func strOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
