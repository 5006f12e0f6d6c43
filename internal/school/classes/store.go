package classes

import (
	"context"
	"database/sql"
	"errors"

	"absensi-backend/internal/platform/db"
	"absensi-backend/internal/platform/ids"
)

type ClassStore interface {
	Insert(ctx context.Context, c Class, homeroomTeacherID *string) error
	Update(ctx context.Context, c Class, homeroomTeacherID *string) (int64, error)
	DeleteGuarded(ctx context.Context, id string) (deleted bool, studentCount int64, err error)
	GetByID(ctx context.Context, id string) (*Class, error)
	List(ctx context.Context) ([]Class, error)
	IDsByHomeroomTeacher(ctx context.Context, teacherID string) ([]string, error)
}

type Store struct{ db *sql.DB }

func NewStore(database *sql.DB) ClassStore { return &Store{db: database} }

const selectJoined = `
SELECT c.id, c.name, c.academic_year, c.semester, c.homeroom_teacher_id,
       COALESCE(t.name, '-') AS homeroom_name, c.created_at, c.updated_at
FROM classes c
LEFT JOIN teachers t ON t.id = c.homeroom_teacher_id
`

func (s *Store) Insert(ctx context.Context, c Class, homeroomTeacherID *string) error {
	const q = `
INSERT INTO classes (id, name, academic_year, semester, homeroom_teacher_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, NOW(6), NOW(6))
`
	_, err := s.db.ExecContext(ctx, q,
		ids.Normalize(c.ID), c.Name, c.AcademicYear, c.Semester, refOrNil(homeroomTeacherID))
	return err
}

func (s *Store) Update(ctx context.Context, c Class, homeroomTeacherID *string) (int64, error) {
	const q = `
UPDATE classes
SET name = ?, academic_year = ?, semester = ?, homeroom_teacher_id = ?, updated_at = NOW(6)
WHERE id = ?
`
	res, err := s.db.ExecContext(ctx, q,
		c.Name, c.AcademicYear, c.Semester, refOrNil(homeroomTeacherID), ids.Normalize(c.ID))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteGuarded counts referencing students and deletes inside one
// transaction, so a concurrent student insert cannot slip past the guard.
func (s *Store) DeleteGuarded(ctx context.Context, id string) (bool, int64, error) {
	var (
		deleted      bool
		studentCount int64
	)
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		norm := ids.Normalize(id)
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM students WHERE class_id = ?`, norm,
		).Scan(&studentCount); err != nil {
			return err
		}
		if studentCount > 0 {
			return nil // guard trips, nothing to delete
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = ?`, norm)
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
	return deleted, studentCount, err
}

func (s *Store) GetByID(ctx context.Context, id string) (*Class, error) {
	row := s.db.QueryRowContext(ctx, selectJoined+` WHERE c.id = ? LIMIT 1`, ids.Normalize(id))
	var r classRow
	err := row.Scan(&r.ID, &r.Name, &r.AcademicYear, &r.Semester, &r.HomeroomTeacherID,
		&r.HomeroomName, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func (s *Store) List(ctx context.Context) ([]Class, error) {
	rows, err := s.db.QueryContext(ctx, selectJoined+` ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Class, 0, 16)
	for rows.Next() {
		var r classRow
		if err := rows.Scan(&r.ID, &r.Name, &r.AcademicYear, &r.Semester, &r.HomeroomTeacherID,
			&r.HomeroomName, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

func (s *Store) IDsByHomeroomTeacher(ctx context.Context, teacherID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM classes WHERE homeroom_teacher_id = ?`, ids.Normalize(teacherID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func refOrNil(id *string) any {
	if id == nil || *id == "" {
		return nil
	}
	return ids.Normalize(*id)
}
