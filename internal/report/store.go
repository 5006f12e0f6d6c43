package report

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"

	"absensi-backend/internal/platform/ids"
)

type rollupFilter struct {
	ClassIDs   []string
	StudentID  string
	Start      string
	End        string
	Restricted bool // class-restricted; with empty ClassIDs matches nothing
}

type ReportStore interface {
	Rollup(ctx context.Context, f rollupFilter) ([]RollupRow, error)
	TopByStatus(ctx context.Context, status string, limit int) ([]RankRow, error)
	StudentsPerClass(ctx context.Context) ([]ClassCountRow, error)
	StatusCountsOn(ctx context.Context, date string, classIDs []string, studentID string, restricted bool) (map[string]int64, error)
	ClassName(ctx context.Context, classID string) (string, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) ReportStore { return &Store{db: db} }

// Rollup groups the ledger by student with conditional per-status sums,
// left-joined against the roster so deleted students still aggregate
// under '-' placeholders.
func (s *Store) Rollup(ctx context.Context, f rollupFilter) ([]RollupRow, error) {
	// a studentId filter must not lift the class restriction
	if f.Restricted && len(f.ClassIDs) == 0 {
		return []RollupRow{}, nil
	}

	var (
		buf    bytes.Buffer
		wheres []string
		args   []any
	)
	buf.WriteString(`
	SELECT a.student_id,
	       COALESCE(s.nis, '-')  AS nis,
	       COALESCE(s.name, '-') AS name,
	       SUM(a.status = 'HADIR') AS hadir,
	       SUM(a.status = 'SAKIT') AS sakit,
	       SUM(a.status = 'IZIN')  AS izin,
	       SUM(a.status = 'ALPA')  AS alpa,
	       COUNT(*) AS total
	FROM attendance a
	LEFT JOIN students s ON s.id = a.student_id
	`)

	if len(f.ClassIDs) > 0 {
		wheres = append(wheres, "a.class_id IN ("+placeholders(len(f.ClassIDs))+")")
		for _, id := range f.ClassIDs {
			args = append(args, ids.Normalize(id))
		}
	}
	if f.StudentID != "" {
		wheres = append(wheres, "a.student_id = ?")
		args = append(args, ids.Normalize(f.StudentID))
	}
	if f.Start != "" {
		wheres = append(wheres, "a.attendance_date >= ?")
		args = append(args, f.Start)
	}
	if f.End != "" {
		wheres = append(wheres, "a.attendance_date <= ?")
		args = append(args, f.End)
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	buf.WriteString(`
	GROUP BY a.student_id, s.nis, s.name
	ORDER BY name ASC, a.student_id ASC`)

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RollupRow, 0, 32)
	for rows.Next() {
		var r RollupRow
		if err := rows.Scan(&r.StudentID, &r.NIS, &r.Name, &r.Hadir, &r.Sakit, &r.Izin, &r.Alpa, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopByStatus ranks students by raw count of one status. Class name joins
// through the student's current class, '-' when either join misses.
func (s *Store) TopByStatus(ctx context.Context, status string, limit int) ([]RankRow, error) {
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	if limit > MaxRankLimit {
		limit = MaxRankLimit
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT COALESCE(s.nis, '-')  AS nis,
	       COALESCE(s.name, '-') AS name,
	       COALESCE(c.name, '-') AS class_name,
	       COUNT(*) AS total
	FROM attendance a
	LEFT JOIN students s ON s.id = a.student_id
	LEFT JOIN classes c ON c.id = s.class_id
	WHERE a.status = ?
	GROUP BY a.student_id, s.nis, s.name, c.name
	ORDER BY total DESC, name ASC
	LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RankRow, 0, limit)
	for rows.Next() {
		var r RankRow
		if err := rows.Scan(&r.NIS, &r.Name, &r.ClassName, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StudentsPerClass counts roster membership per class, independent of
// attendance.
func (s *Store) StudentsPerClass(ctx context.Context) ([]ClassCountRow, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT c.id, c.name, COUNT(s.id) AS students
	FROM classes c
	LEFT JOIN students s ON s.class_id = c.id
	GROUP BY c.id, c.name
	ORDER BY c.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ClassCountRow, 0, 16)
	for rows.Next() {
		var r ClassCountRow
		if err := rows.Scan(&r.ClassID, &r.ClassName, &r.Students); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) StatusCountsOn(ctx context.Context, date string, classIDs []string, studentID string, restricted bool) (map[string]int64, error) {
	if restricted && len(classIDs) == 0 {
		return map[string]int64{}, nil
	}

	var (
		buf  bytes.Buffer
		args []any
	)
	buf.WriteString(`SELECT status, COUNT(*) FROM attendance WHERE attendance_date = ?`)
	args = append(args, date)
	if len(classIDs) > 0 {
		buf.WriteString(` AND class_id IN (` + placeholders(len(classIDs)) + `)`)
		for _, id := range classIDs {
			args = append(args, ids.Normalize(id))
		}
	}
	if studentID != "" {
		buf.WriteString(` AND student_id = ?`)
		args = append(args, ids.Normalize(studentID))
	}
	buf.WriteString(` GROUP BY status`)

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64, 4)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (s *Store) ClassName(ctx context.Context, classID string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM classes WHERE id = ? LIMIT 1`, ids.Normalize(classID)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
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
