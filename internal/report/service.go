package report

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/apperr"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Service struct {
	store ReportStore
	clock Clock
	loc   *time.Location
}

func NewService(db *sql.DB, loc *time.Location) *Service {
	return &Service{store: NewStore(db), clock: realClock{}, loc: loc}
}

// Rollup aggregates the ledger inside the caller's scope. Empty bounds or
// class filter mean "everything visible", never an error.
func (s *Service) Rollup(ctx context.Context, scope access.Scope, q RollupQuery) (RollupResponse, error) {
	f, err := s.filterFor(scope, q)
	if err != nil {
		return RollupResponse{}, err
	}
	if f.Restricted && len(f.ClassIDs) == 0 {
		return RollupResponse{Rows: []RollupRow{}}, nil
	}

	rows, err := s.store.Rollup(ctx, f)
	if err != nil {
		return RollupResponse{}, err
	}
	return RollupResponse{Rows: rows}, nil
}

func (s *Service) TopByStatus(ctx context.Context, status string, limit int) ([]RankRow, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case "HADIR", "SAKIT", "IZIN", "ALPA":
	default:
		return nil, apperr.Invalid("status must be HADIR, SAKIT, IZIN or ALPA")
	}
	return s.store.TopByStatus(ctx, status, limit)
}

func (s *Service) ClassDistribution(ctx context.Context) ([]ClassCountRow, error) {
	return s.store.StudentsPerClass(ctx)
}

func (s *Service) TodayStatusCounts(ctx context.Context, scope access.Scope, classID string) (StatusCounts, error) {
	scope = scope.NarrowClass(classID)
	today := s.clock.Now().In(s.loc).Format(DateLayout)

	restricted := !scope.All && scope.StudentID == ""
	if restricted && len(scope.ClassIDs) == 0 {
		return StatusCounts{Date: today}, nil
	}
	var classIDs []string
	if restricted {
		classIDs = scope.ClassIDs
	}

	counts, err := s.store.StatusCountsOn(ctx, today, classIDs, scope.StudentID, restricted)
	if err != nil {
		return StatusCounts{}, err
	}
	return StatusCounts{
		Date:  today,
		Hadir: counts["HADIR"],
		Sakit: counts["SAKIT"],
		Izin:  counts["IZIN"],
		Alpa:  counts["ALPA"],
	}, nil
}

// Export renders the rollup for one class as an xlsx document. Unlike the
// list-shaped reads, an export needs an explicit in-scope class.
func (s *Service) Export(ctx context.Context, scope access.Scope, q RollupQuery) (string, []byte, error) {
	if strings.TrimSpace(q.ClassID) == "" {
		return "", nil, apperr.Invalid("classId is required")
	}
	if err := scope.RequireClass(q.ClassID); err != nil {
		return "", nil, err
	}

	f, err := s.filterFor(scope, q)
	if err != nil {
		return "", nil, err
	}
	rows, err := s.store.Rollup(ctx, f)
	if err != nil {
		return "", nil, err
	}

	className, err := s.store.ClassName(ctx, q.ClassID)
	if err != nil {
		return "", nil, err
	}

	wb, err := buildWorkbook(rows)
	if err != nil {
		return "", nil, err
	}
	buf, err := wb.WriteToBuffer()
	if err != nil {
		return "", nil, err
	}
	return exportFilename(className, q.Start, q.End), buf.Bytes(), nil
}

func (s *Service) filterFor(scope access.Scope, q RollupQuery) (rollupFilter, error) {
	if err := validDate(q.Start); err != nil {
		return rollupFilter{}, err
	}
	if err := validDate(q.End); err != nil {
		return rollupFilter{}, err
	}

	scope = scope.NarrowClass(q.ClassID)
	f := rollupFilter{Start: q.Start, End: q.End}

	// a student session only ever sees itself; its own rows are in scope
	// whatever class snapshot they carry
	if scope.StudentID != "" {
		f.StudentID = scope.StudentID
		return f, nil
	}

	f.StudentID = strings.TrimSpace(q.StudentID)
	if !scope.All {
		f.ClassIDs = scope.ClassIDs
		f.Restricted = true
	}
	return f, nil
}

func validDate(v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, v); err != nil {
		return apperr.Invalid("start/end must be YYYY-MM-DD")
	}
	return nil
}
