package students

import (
	"context"
	"database/sql"
	"errors"

	"absensi-backend/internal/platform/ids"
)

type StudentStore interface {
	Insert(ctx context.Context, s Student) error
	Update(ctx context.Context, s Student) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	GetByID(ctx context.Context, id string) (*Student, error)
	GetByNIS(ctx context.Context, nis string) (*Student, error)
	List(ctx context.Context, classIDs []string) ([]Student, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) StudentStore { return &Store{db: db} }

const selectJoined = `
SELECT s.id, s.nis, s.name, s.class_id, COALESCE(c.name, '-') AS class_name, s.created_at, s.updated_at
FROM students s
LEFT JOIN classes c ON c.id = s.class_id
`

func (s *Store) Insert(ctx context.Context, st Student) error {
	const q = `
INSERT INTO students (id, nis, name, class_id, created_at, updated_at)
VALUES (?, ?, ?, ?, NOW(6), NOW(6))
`
	_, err := s.db.ExecContext(ctx, q, ids.Normalize(st.ID), st.NIS, st.Name, ids.Normalize(st.ClassID))
	return err
}

func (s *Store) Update(ctx context.Context, st Student) (int64, error) {
	const q = `
UPDATE students
SET nis = ?, name = ?, class_id = ?, updated_at = NOW(6)
WHERE id = ?
`
	res, err := s.db.ExecContext(ctx, q, st.NIS, st.Name, ids.Normalize(st.ClassID), ids.Normalize(st.ID))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the student row only. Attendance history keeps the id and
// shows up with '-' placeholders in reports.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM students WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, ids.Normalize(id))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) GetByID(ctx context.Context, id string) (*Student, error) {
	row := s.db.QueryRowContext(ctx, selectJoined+` WHERE s.id = ? LIMIT 1`, ids.Normalize(id))
	return scanOne(row)
}

func (s *Store) GetByNIS(ctx context.Context, nis string) (*Student, error) {
	row := s.db.QueryRowContext(ctx, selectJoined+` WHERE s.nis = ? LIMIT 1`, nis)
	return scanOne(row)
}

func scanOne(row *sql.Row) (*Student, error) {
	var r studentRow
	err := row.Scan(&r.ID, &r.NIS, &r.Name, &r.ClassID, &r.ClassName, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func (s *Store) List(ctx context.Context, classIDs []string) ([]Student, error) {
	q := selectJoined
	var args []any
	if len(classIDs) > 0 {
		q += ` WHERE s.class_id IN (` + placeholders(len(classIDs)) + `)`
		for _, id := range classIDs {
			args = append(args, ids.Normalize(id))
		}
	}
	q += ` ORDER BY s.created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Student, 0, 32)
	for rows.Next() {
		var r studentRow
		if err := rows.Scan(&r.ID, &r.NIS, &r.Name, &r.ClassID, &r.ClassName, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
