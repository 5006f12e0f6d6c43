package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/apperr"
)

const (
	classA = "01HCLASSA00000000000000000"
	classB = "01HCLASSB00000000000000000"
)

type fakeReportStore struct {
	rollupRows []RollupRow
	rankRows   []RankRow
	countRows  []ClassCountRow
	counts     map[string]int64
	className  string

	lastFilter     rollupFilter
	lastRankStatus string
	lastRankLimit  int
	lastCountsDate string
	rollupCalls    int
	countsCalls    int
}

func (f *fakeReportStore) Rollup(ctx context.Context, filter rollupFilter) ([]RollupRow, error) {
	f.rollupCalls++
	f.lastFilter = filter
	return f.rollupRows, nil
}

func (f *fakeReportStore) TopByStatus(ctx context.Context, status string, limit int) ([]RankRow, error) {
	f.lastRankStatus = status
	f.lastRankLimit = limit
	return f.rankRows, nil
}

func (f *fakeReportStore) StudentsPerClass(ctx context.Context) ([]ClassCountRow, error) {
	return f.countRows, nil
}

func (f *fakeReportStore) StatusCountsOn(ctx context.Context, date string, classIDs []string, studentID string, restricted bool) (map[string]int64, error) {
	f.countsCalls++
	f.lastCountsDate = date
	return f.counts, nil
}

func (f *fakeReportStore) ClassName(ctx context.Context, classID string) (string, error) {
	return f.className, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(store ReportStore) *Service {
	return &Service{
		store: store,
		clock: fixedClock{now: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)},
		loc:   time.UTC,
	}
}

func TestRollupScopeFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("admin unbounded", func(t *testing.T) {
		store := &fakeReportStore{}
		svc := newTestService(store)
		if _, err := svc.Rollup(ctx, access.MatchAll(), RollupQuery{}); err != nil {
			t.Fatalf("Rollup() error = %v", err)
		}
		if store.lastFilter.Restricted {
			t.Error("admin filter marked restricted")
		}
	})

	t.Run("admin with class filter narrows", func(t *testing.T) {
		store := &fakeReportStore{}
		svc := newTestService(store)
		if _, err := svc.Rollup(ctx, access.MatchAll(), RollupQuery{ClassID: classA}); err != nil {
			t.Fatalf("Rollup() error = %v", err)
		}
		f := store.lastFilter
		if !f.Restricted || len(f.ClassIDs) != 1 || f.ClassIDs[0] != classA {
			t.Errorf("filter = %+v, want restricted to %s", f, classA)
		}
	})

	t.Run("wali asking for a foreign class keeps own classes", func(t *testing.T) {
		store := &fakeReportStore{}
		svc := newTestService(store)
		scope := access.ForClasses([]string{classA})
		if _, err := svc.Rollup(ctx, scope, RollupQuery{ClassID: classB}); err != nil {
			t.Fatalf("Rollup() error = %v", err)
		}
		f := store.lastFilter
		if len(f.ClassIDs) != 1 || f.ClassIDs[0] != classA {
			t.Errorf("filter classes = %v, want [%s]", f.ClassIDs, classA)
		}
	})

	t.Run("student session overrides requested studentId", func(t *testing.T) {
		store := &fakeReportStore{}
		svc := newTestService(store)
		scope := access.ForStudent("01HSELF0000000000000000000", classA)
		if _, err := svc.Rollup(ctx, scope, RollupQuery{StudentID: "01HOTHER000000000000000000"}); err != nil {
			t.Fatalf("Rollup() error = %v", err)
		}
		if store.lastFilter.StudentID != "01HSELF0000000000000000000" {
			t.Errorf("filter student = %q, want own id", store.lastFilter.StudentID)
		}
	})

	t.Run("wali without homeroom classes reads nothing via studentId", func(t *testing.T) {
		store := &fakeReportStore{rollupRows: []RollupRow{{StudentID: "01HA", Total: 10}}}
		svc := newTestService(store)

		resp, err := svc.Rollup(ctx, access.ForClasses(nil), RollupQuery{StudentID: "01HOTHER000000000000000000"})
		if err != nil {
			t.Fatalf("Rollup() error = %v", err)
		}
		if len(resp.Rows) != 0 {
			t.Errorf("rows = %d, want 0", len(resp.Rows))
		}
		if store.rollupCalls != 0 {
			t.Errorf("store was queried %d times, want 0", store.rollupCalls)
		}
	})

	t.Run("student session is not class-restricted over its own rows", func(t *testing.T) {
		store := &fakeReportStore{}
		svc := newTestService(store)
		scope := access.ForStudent("01HSELF0000000000000000000", classA)
		if _, err := svc.Rollup(ctx, scope, RollupQuery{}); err != nil {
			t.Fatalf("Rollup() error = %v", err)
		}
		f := store.lastFilter
		if f.Restricted || len(f.ClassIDs) != 0 {
			t.Errorf("filter = %+v, want student pin only", f)
		}
		if f.StudentID != "01HSELF0000000000000000000" {
			t.Errorf("filter student = %q, want own id", f.StudentID)
		}
	})

	t.Run("bad date bound", func(t *testing.T) {
		svc := newTestService(&fakeReportStore{})
		_, err := svc.Rollup(ctx, access.MatchAll(), RollupQuery{Start: "15-01-2024"})
		if got := apperr.FromErr(err).Code; got != apperr.CodeInvalidArgument {
			t.Errorf("code = %q, want INVALID_ARGUMENT", got)
		}
	})
}

func TestTopByStatus(t *testing.T) {
	ctx := context.Background()
	store := &fakeReportStore{rankRows: []RankRow{{NIS: "9521111", Name: "Andi", ClassName: "X-A", Total: 12}}}
	svc := newTestService(store)

	rows, err := svc.TopByStatus(ctx, "alpa", 5)
	if err != nil {
		t.Fatalf("TopByStatus() error = %v", err)
	}
	if store.lastRankStatus != "ALPA" {
		t.Errorf("status passed to store = %q, want ALPA", store.lastRankStatus)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want 1", len(rows))
	}

	if _, err := svc.TopByStatus(ctx, "BELUM", 5); apperr.FromErr(err).Code != apperr.CodeInvalidArgument {
		t.Error("BELUM must not be rankable")
	}
	if _, err := svc.TopByStatus(ctx, "", 5); apperr.FromErr(err).Code != apperr.CodeInvalidArgument {
		t.Error("empty status must be rejected")
	}
}

func TestTodayStatusCounts(t *testing.T) {
	ctx := context.Background()
	store := &fakeReportStore{counts: map[string]int64{"HADIR": 20, "ALPA": 2}}
	svc := newTestService(store)

	got, err := svc.TodayStatusCounts(ctx, access.MatchAll(), "")
	if err != nil {
		t.Fatalf("TodayStatusCounts() error = %v", err)
	}
	if store.lastCountsDate != "2024-01-15" {
		t.Errorf("date = %q, want clock's today", store.lastCountsDate)
	}
	if got.Hadir != 20 || got.Alpa != 2 || got.Sakit != 0 || got.Izin != 0 {
		t.Errorf("counts = %+v", got)
	}

	t.Run("wali without homeroom classes gets zero counts", func(t *testing.T) {
		empty := &fakeReportStore{counts: map[string]int64{"HADIR": 20}}
		svc := newTestService(empty)

		got, err := svc.TodayStatusCounts(ctx, access.ForClasses(nil), "")
		if err != nil {
			t.Fatalf("TodayStatusCounts() error = %v", err)
		}
		if got.Hadir != 0 || got.Sakit != 0 || got.Izin != 0 || got.Alpa != 0 {
			t.Errorf("counts = %+v, want zeros", got)
		}
		if empty.countsCalls != 0 {
			t.Errorf("store was queried %d times, want 0", empty.countsCalls)
		}
	})
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a class", func(t *testing.T) {
		svc := newTestService(&fakeReportStore{})
		_, _, err := svc.Export(ctx, access.MatchAll(), RollupQuery{})
		if got := apperr.FromErr(err).Code; got != apperr.CodeInvalidArgument {
			t.Errorf("code = %q, want INVALID_ARGUMENT", got)
		}
	})

	t.Run("out-of-scope class is forbidden", func(t *testing.T) {
		svc := newTestService(&fakeReportStore{})
		scope := access.ForClasses([]string{classA})
		_, _, err := svc.Export(ctx, scope, RollupQuery{ClassID: classB})
		if got := apperr.FromErr(err).Code; got != apperr.CodeForbidden {
			t.Errorf("code = %q, want FORBIDDEN", got)
		}
	})

	t.Run("renders a workbook named after the class", func(t *testing.T) {
		store := &fakeReportStore{
			className: "X A",
			rollupRows: []RollupRow{
				{StudentID: "01HA", NIS: "9521111", Name: "Andi", Hadir: 10, Total: 10},
			},
		}
		svc := newTestService(store)

		name, data, err := svc.Export(ctx, access.MatchAll(), RollupQuery{
			ClassID: classA, Start: "2024-01-01", End: "2024-01-31",
		})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if name != "rekap_X_A_2024-01-01_2024-01-31.xlsx" {
			t.Errorf("filename = %q", name)
		}
		if len(data) == 0 {
			t.Fatal("empty workbook payload")
		}
		// xlsx payloads are zip archives
		if !bytes.HasPrefix(data, []byte("PK")) {
			t.Errorf("payload does not look like a zip: % x", data[:4])
		}
		if !store.lastFilter.Restricted || len(store.lastFilter.ClassIDs) != 1 {
			t.Errorf("export filter = %+v, want the single class", store.lastFilter)
		}
	})
}
