package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/db"
	"absensi-backend/internal/platform/ids"
)

type LedgerStore interface {
	Upsert(ctx context.Context, date, studentID, classID string, status Status, note *string) (Record, bool, error)
	ListByDate(ctx context.Context, date string, classIDs []string, studentID string) ([]Record, error)
	List(ctx context.Context, q ListQuery, scope access.Scope) ([]Record, int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) LedgerStore { return &Store{db: db} }

const selectRecord = `
SELECT attendance_id, DATE_FORMAT(attendance_date, '%Y-%m-%d') AS attendance_date,
       student_id, class_id, status, note, created_at, updated_at
FROM attendance
`

// Upsert INSERTs or UPDATEs on the (student_id, attendance_date) UNIQUE
// key in a single statement; this is the one linearizability point in the
// system.
// The class snapshot, status and note always take the new value;
// created_at only on first insert.
// RowsAffected: 1 = inserted, 2 = updated.
func (s *Store) Upsert(ctx context.Context, date, studentID, classID string, status Status, note *string) (Record, bool, error) {
	const q = `
	INSERT INTO attendance (attendance_date, student_id, class_id, status, note, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, NOW(6), NOW(6))
	ON DUPLICATE KEY UPDATE
	class_id   = VALUES(class_id),
	status     = VALUES(status),
	note       = VALUES(note),
	updated_at = NOW(6)`

	res, err := s.db.ExecContext(ctx, q,
		date, ids.Normalize(studentID), ids.Normalize(classID), string(status), noteOrNil(note))
	if err != nil {
		return Record{}, false, err
	}
	aff, _ := res.RowsAffected()
	created := (aff == 1)

	row := s.db.QueryRowContext(ctx, selectRecord+`
	WHERE student_id = ? AND attendance_date = ?`,
		ids.Normalize(studentID), date,
	)
	var r recordRow
	if err := row.Scan(&r.AttendanceID, &r.Date, &r.StudentID, &r.ClassID, &r.Status, &r.Note, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, created, apperr.Internal("upserted but not found")
		}
		return Record{}, created, err
	}
	return r.toModel(), created, nil
}

// ListByDate feeds the day board: all records of one day, optionally
// narrowed by class set and/or student.
func (s *Store) ListByDate(ctx context.Context, date string, classIDs []string, studentID string) ([]Record, error) {
	var (
		buf  bytes.Buffer
		args []any
	)
	buf.WriteString(selectRecord)
	buf.WriteString(` WHERE attendance_date = ?`)
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
	buf.WriteString(` ORDER BY updated_at DESC, attendance_id DESC`)

	return queryRecords(ctx, s.db, buf.String(), args)
}

// List applies the caller's filters plus the scope restriction. A pinned
// student scope reads only its own rows (no class predicate: historical
// rows may carry old class snapshots); any other restricted scope with an
// empty class set matches nothing, and a caller-supplied studentId never
// lifts that.
func (s *Store) List(ctx context.Context, q ListQuery, scope access.Scope) ([]Record, int64, error) {
	var (
		wheres []string
		args   []any
	)
	if scope.StudentID != "" {
		wheres = append(wheres, "student_id = ?")
		args = append(args, ids.Normalize(scope.StudentID))
	} else {
		if q.StudentID != "" {
			wheres = append(wheres, "student_id = ?")
			args = append(args, ids.Normalize(q.StudentID))
		}
		if !scope.All {
			if len(scope.ClassIDs) == 0 {
				return []Record{}, 0, nil
			}
			wheres = append(wheres, "class_id IN ("+placeholders(len(scope.ClassIDs))+")")
			for _, id := range scope.ClassIDs {
				args = append(args, ids.Normalize(id))
			}
		}
	}
	if q.On != "" {
		wheres = append(wheres, "attendance_date = ?")
		args = append(args, q.On)
	} else {
		if q.From != "" {
			wheres = append(wheres, "attendance_date >= ?")
			args = append(args, q.From)
		}
		if q.To != "" {
			wheres = append(wheres, "attendance_date <= ?")
			args = append(args, q.To)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(selectRecord)
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	buf.WriteString(" ORDER BY attendance_date DESC, attendance_id DESC")

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, q.Offset))

	var cntBuf bytes.Buffer
	cntBuf.WriteString("SELECT COUNT(*) FROM attendance")
	if len(wheres) > 0 {
		cntBuf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}

	// page and count must come from one snapshot or the total can
	// contradict the rows
	var (
		out   []Record
		total int64
	)
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		var err error
		if out, err = queryRecords(ctx, tx, buf.String(), args); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, cntBuf.String(), args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func queryRecords(ctx context.Context, dbtx db.DBTX, q string, args []any) ([]Record, error) {
	rows, err := dbtx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, 32)
	for rows.Next() {
		var r recordRow
		if err := rows.Scan(&r.AttendanceID, &r.Date, &r.StudentID, &r.ClassID, &r.Status, &r.Note, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

func noteOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
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
