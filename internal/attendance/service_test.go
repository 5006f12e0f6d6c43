package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/db"
	"absensi-backend/internal/school/students"
)

// ===== fakes =====

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeRoster struct {
	byNIS map[string]students.Student
	byID  map[string]students.Student
}

func newFakeRoster(list ...students.Student) *fakeRoster {
	r := &fakeRoster{
		byNIS: make(map[string]students.Student),
		byID:  make(map[string]students.Student),
	}
	for _, st := range list {
		r.byNIS[st.NIS] = st
		r.byID[st.ID] = st
	}
	return r
}

func (r *fakeRoster) Insert(ctx context.Context, s students.Student) error { return nil }
func (r *fakeRoster) Update(ctx context.Context, s students.Student) (int64, error) {
	return 0, errors.New("not implemented")
}
func (r *fakeRoster) Delete(ctx context.Context, id string) (int64, error) {
	return 0, errors.New("not implemented")
}
func (r *fakeRoster) GetByID(ctx context.Context, id string) (*students.Student, error) {
	if st, ok := r.byID[id]; ok {
		return &st, nil
	}
	return nil, nil
}
func (r *fakeRoster) GetByNIS(ctx context.Context, nis string) (*students.Student, error) {
	if st, ok := r.byNIS[nis]; ok {
		return &st, nil
	}
	return nil, nil
}
func (r *fakeRoster) List(ctx context.Context, classIDs []string) ([]students.Student, error) {
	var out []students.Student
	for _, st := range r.byID {
		if len(classIDs) == 0 {
			out = append(out, st)
			continue
		}
		for _, id := range classIDs {
			if st.ClassID == id {
				out = append(out, st)
			}
		}
	}
	return out, nil
}

// fakeLedger keeps one record per (studentID, date), like the UNIQUE key
// in the real store.
type fakeLedger struct {
	records map[string]Record
	nextID  uint64
	upserts int
	lists   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]Record)}
}

func ledgerKey(studentID, date string) string { return studentID + "|" + date }

func (l *fakeLedger) Upsert(ctx context.Context, date, studentID, classID string, status Status, note *string) (Record, bool, error) {
	l.upserts++
	key := ledgerKey(studentID, date)
	rec, ok := l.records[key]
	if !ok {
		l.nextID++
		rec = Record{
			AttendanceID: l.nextID,
			Date:         date,
			StudentID:    studentID,
			CreatedAt:    time.Now(),
		}
	}
	rec.ClassID = classID
	rec.Status = status
	rec.Note = note
	rec.UpdatedAt = time.Now()
	l.records[key] = rec
	return rec, !ok, nil
}

func (l *fakeLedger) ListByDate(ctx context.Context, date string, classIDs []string, studentID string) ([]Record, error) {
	var out []Record
	for _, rec := range l.records {
		if rec.Date != date {
			continue
		}
		if studentID != "" && rec.StudentID != studentID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (l *fakeLedger) List(ctx context.Context, q ListQuery, scope access.Scope) ([]Record, int64, error) {
	l.lists++
	var out []Record
	for _, rec := range l.records {
		if q.StudentID != "" && rec.StudentID != q.StudentID {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

// ===== helpers =====

const (
	testStudentID = "01HTEST0000000000000000000"
	testClassID   = "01HCLASS000000000000000000"
)

func newTestService(ledger LedgerStore, roster students.StudentStore, now time.Time) *Service {
	sched := ScheduleFromConfig([]db.SlotConfig{
		{Label: "Jadwal 1", Start: "07:00", End: "07:10"},
	})
	return &Service{
		store:    ledger,
		roster:   roster,
		schedule: sched,
		clock:    fakeClock{now: now},
		loc:      time.UTC,
	}
}

func inWindow() time.Time  { return time.Date(2024, 1, 15, 7, 5, 0, 0, time.UTC) }
func outWindow() time.Time { return time.Date(2024, 1, 15, 7, 15, 0, 0, time.UTC) }

func testStudent() students.Student {
	return students.Student{
		ID:        testStudentID,
		NIS:       "9522222",
		Name:      "Siti",
		ClassID:   testClassID,
		ClassName: "X-A",
	}
}

// ===== tests =====

func TestScanFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("unregistered NIS", func(t *testing.T) {
		svc := newTestService(newFakeLedger(), newFakeRoster(), inWindow())
		resp, err := svc.Scan(ctx, ScanRequest{NIS: "000000"})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if resp.Result != ScanUnregistered {
			t.Errorf("result = %q, want %q", resp.Result, ScanUnregistered)
		}
	})

	t.Run("outside window is rejected before any write", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger, newFakeRoster(testStudent()), outWindow())
		resp, err := svc.Scan(ctx, ScanRequest{NIS: "9522222"})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if resp.Result != ScanRejected {
			t.Errorf("result = %q, want %q", resp.Result, ScanRejected)
		}
		if ledger.upserts != 0 {
			t.Errorf("ledger saw %d upserts, want 0", ledger.upserts)
		}
	})

	t.Run("admitted scan writes HADIR with class snapshot", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger, newFakeRoster(testStudent()), inWindow())

		resp, err := svc.Scan(ctx, ScanRequest{NIS: "9522222"})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if resp.Result != ScanAdmitted {
			t.Fatalf("result = %q, want %q", resp.Result, ScanAdmitted)
		}
		if resp.Slot != "Jadwal 1" {
			t.Errorf("slot = %q, want Jadwal 1", resp.Slot)
		}
		if resp.Record == nil || resp.Record.Status != string(StatusHadir) {
			t.Fatalf("record = %+v, want HADIR", resp.Record)
		}
		if resp.Record.ClassID != testClassID {
			t.Errorf("classId snapshot = %q, want %q", resp.Record.ClassID, testClassID)
		}
		if resp.Record.Date != "2024-01-15" {
			t.Errorf("date = %q, want 2024-01-15", resp.Record.Date)
		}
	})

	t.Run("second scan same day keeps one record", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger, newFakeRoster(testStudent()), inWindow())

		if _, err := svc.Scan(ctx, ScanRequest{NIS: "9522222"}); err != nil {
			t.Fatalf("first Scan() error = %v", err)
		}
		if _, err := svc.Scan(ctx, ScanRequest{NIS: "9522222"}); err != nil {
			t.Fatalf("second Scan() error = %v", err)
		}
		if len(ledger.records) != 1 {
			t.Fatalf("ledger has %d records, want 1", len(ledger.records))
		}
		rec := ledger.records[ledgerKey(testStudentID, "2024-01-15")]
		if rec.Status != StatusHadir {
			t.Errorf("status = %q, want HADIR", rec.Status)
		}
	})

	t.Run("empty nis", func(t *testing.T) {
		svc := newTestService(newFakeLedger(), newFakeRoster(), inWindow())
		_, err := svc.Scan(ctx, ScanRequest{NIS: "   "})
		if got := apperr.FromErr(err).Code; got != apperr.CodeInvalidArgument {
			t.Errorf("code = %q, want INVALID_ARGUMENT", got)
		}
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	admin := access.MatchAll()

	t.Run("overwrites previous status for the day", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger, newFakeRoster(testStudent()), inWindow())

		first, err := svc.SetStatus(ctx, admin, SetStatusRequest{
			Date: "2024-01-15", StudentID: testStudentID, Status: "HADIR",
		})
		if err != nil {
			t.Fatalf("SetStatus() error = %v", err)
		}
		second, err := svc.SetStatus(ctx, admin, SetStatusRequest{
			Date: "2024-01-15", StudentID: testStudentID, Status: "SAKIT",
		})
		if err != nil {
			t.Fatalf("SetStatus() error = %v", err)
		}
		if len(ledger.records) != 1 {
			t.Fatalf("ledger has %d records, want 1", len(ledger.records))
		}
		if second.AttendanceID != first.AttendanceID {
			t.Errorf("second write allocated a new id: %d != %d", second.AttendanceID, first.AttendanceID)
		}
		if second.Status != "SAKIT" {
			t.Errorf("status = %q, want SAKIT", second.Status)
		}
	})

	t.Run("scoped wali can write inside own class", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger, newFakeRoster(testStudent()), inWindow())

		rec, err := svc.SetStatus(ctx, access.ForClasses([]string{testClassID}), SetStatusRequest{
			Date: "2024-01-15", StudentID: testStudentID, Status: "IZIN",
		})
		if err != nil {
			t.Fatalf("SetStatus() error = %v", err)
		}
		if rec.ClassID != testClassID {
			t.Errorf("classId = %q, want the student's class", rec.ClassID)
		}
	})

	t.Run("foreign classId cannot widen a wali scope", func(t *testing.T) {
		waliClass := "01HWALI0000000000000000000"
		ledger := newFakeLedger()
		svc := newTestService(ledger, newFakeRoster(testStudent()), inWindow())

		// the student belongs to testClassID; the caller names their own
		// class instead
		_, err := svc.SetStatus(ctx, access.ForClasses([]string{waliClass}), SetStatusRequest{
			Date: "2024-01-15", StudentID: testStudentID, ClassID: waliClass, Status: "ALPA",
		})
		if got := apperr.FromErr(err).Code; got != apperr.CodeForbidden {
			t.Fatalf("code = %q, want FORBIDDEN", got)
		}
		if ledger.upserts != 0 {
			t.Errorf("ledger saw %d upserts, want 0", ledger.upserts)
		}
	})

	t.Run("classId must match the student's class", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger, newFakeRoster(testStudent()), inWindow())

		_, err := svc.SetStatus(ctx, admin, SetStatusRequest{
			Date: "2024-01-15", StudentID: testStudentID, ClassID: "01HOTHER000000000000000000", Status: "HADIR",
		})
		if got := apperr.FromErr(err).Code; got != apperr.CodeInvalidArgument {
			t.Fatalf("code = %q, want INVALID_ARGUMENT", got)
		}
		if ledger.upserts != 0 {
			t.Errorf("ledger saw %d upserts, want 0", ledger.upserts)
		}
	})

	t.Run("gate is bypassed for manual writes", func(t *testing.T) {
		svc := newTestService(newFakeLedger(), newFakeRoster(testStudent()), outWindow())
		if _, err := svc.SetStatus(ctx, admin, SetStatusRequest{
			Date: "2024-01-15", StudentID: testStudentID, Status: "IZIN",
		}); err != nil {
			t.Fatalf("SetStatus() outside window error = %v", err)
		}
	})

	tests := []struct {
		name  string
		scope access.Scope
		req   SetStatusRequest
		code  apperr.Code
	}{
		{
			name:  "BELUM is never written",
			scope: admin,
			req:   SetStatusRequest{Date: "2024-01-15", StudentID: testStudentID, Status: "BELUM"},
			code:  apperr.CodeInvalidArgument,
		},
		{
			name:  "unknown status",
			scope: admin,
			req:   SetStatusRequest{Date: "2024-01-15", StudentID: testStudentID, Status: "LATE"},
			code:  apperr.CodeInvalidArgument,
		},
		{
			name:  "bad date",
			scope: admin,
			req:   SetStatusRequest{Date: "15/01/2024", StudentID: testStudentID, Status: "HADIR"},
			code:  apperr.CodeInvalidArgument,
		},
		{
			name:  "unknown student",
			scope: admin,
			req:   SetStatusRequest{Date: "2024-01-15", StudentID: "01HNOSUCH00000000000000000", Status: "HADIR"},
			code:  apperr.CodeNotFound,
		},
		{
			name:  "student sessions cannot write",
			scope: access.ForStudent(testStudentID, testClassID),
			req:   SetStatusRequest{Date: "2024-01-15", StudentID: testStudentID, Status: "HADIR"},
			code:  apperr.CodeForbidden,
		},
		{
			name:  "homeroom teacher outside own classes",
			scope: access.ForClasses([]string{"01HOTHER000000000000000000"}),
			req:   SetStatusRequest{Date: "2024-01-15", StudentID: testStudentID, Status: "HADIR"},
			code:  apperr.CodeForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeLedger(), newFakeRoster(testStudent()), inWindow())
			_, err := svc.SetStatus(ctx, tt.scope, tt.req)
			if err == nil {
				t.Fatal("SetStatus() error = nil, want error")
			}
			if got := apperr.FromErr(err).Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestDayBoardSynthesizesBelum(t *testing.T) {
	ctx := context.Background()

	marked := testStudent()
	unmarked := students.Student{
		ID:      "01HSECOND00000000000000000",
		NIS:     "9523333",
		Name:    "Budi",
		ClassID: testClassID,
	}

	ledger := newFakeLedger()
	svc := newTestService(ledger, newFakeRoster(marked, unmarked), inWindow())

	if _, _, err := ledger.Upsert(ctx, "2024-01-15", marked.ID, testClassID, StatusHadir, nil); err != nil {
		t.Fatal(err)
	}

	board, err := svc.DayBoard(ctx, access.MatchAll(), testClassID, "2024-01-15")
	if err != nil {
		t.Fatalf("DayBoard() error = %v", err)
	}
	if len(board.Rows) != 2 {
		t.Fatalf("board has %d rows, want 2", len(board.Rows))
	}

	statuses := make(map[string]string)
	for _, row := range board.Rows {
		statuses[row.StudentID] = row.Status
	}
	if statuses[marked.ID] != string(StatusHadir) {
		t.Errorf("marked student status = %q, want HADIR", statuses[marked.ID])
	}
	if statuses[unmarked.ID] != string(StatusBelum) {
		t.Errorf("unmarked student status = %q, want BELUM", statuses[unmarked.ID])
	}
}

func TestListRestrictedScope(t *testing.T) {
	ctx := context.Background()

	t.Run("wali without homeroom classes sees nothing even with a studentId filter", func(t *testing.T) {
		ledger := newFakeLedger()
		if _, _, err := ledger.Upsert(ctx, "2024-01-15", testStudentID, testClassID, StatusHadir, nil); err != nil {
			t.Fatal(err)
		}
		svc := newTestService(ledger, newFakeRoster(testStudent()), inWindow())

		resp, err := svc.List(ctx, access.ForClasses(nil), ListQuery{StudentID: testStudentID})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(resp.Rows) != 0 {
			t.Errorf("rows = %d, want 0", len(resp.Rows))
		}
		if ledger.lists != 0 {
			t.Errorf("store was queried %d times, want 0", ledger.lists)
		}
	})

	t.Run("student sessions still read their own rows", func(t *testing.T) {
		ledger := newFakeLedger()
		if _, _, err := ledger.Upsert(ctx, "2024-01-15", testStudentID, testClassID, StatusHadir, nil); err != nil {
			t.Fatal(err)
		}
		svc := newTestService(ledger, newFakeRoster(testStudent()), inWindow())

		resp, err := svc.List(ctx, access.ForStudent(testStudentID, ""), ListQuery{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(resp.Rows) != 1 {
			t.Errorf("rows = %d, want 1", len(resp.Rows))
		}
	})
}

func TestDayBoardScope(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeLedger(), newFakeRoster(testStudent()), inWindow())

	_, err := svc.DayBoard(ctx, access.ForClasses([]string{"01HOTHER000000000000000000"}), testClassID, "2024-01-15")
	if got := apperr.FromErr(err).Code; got != apperr.CodeForbidden {
		t.Errorf("code = %q, want FORBIDDEN", got)
	}
}
