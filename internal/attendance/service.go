package attendance

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/ids"
	"absensi-backend/internal/school/students"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Service struct {
	store    LedgerStore
	roster   students.StudentStore
	schedule Schedule
	clock    Clock
	loc      *time.Location
}

func NewService(db *sql.DB, roster students.StudentStore, schedule Schedule, loc *time.Location) *Service {
	return &Service{
		store:    NewStore(db),
		roster:   roster,
		schedule: schedule,
		clock:    realClock{},
		loc:      loc,
	}
}

func (s *Service) now() time.Time { return s.clock.Now().In(s.loc) }

// today is always derived in the business timezone; a kiosk or admin in
// another zone must not shift the day boundary.
func (s *Service) today() string { return s.now().Format(DateLayout) }

// Scan runs the kiosk pipeline: NIS -> student, schedule gate, HADIR
// upsert for today with the student's current class snapshot. Rejections
// and unknown NIS come back as shaped results so the kiosk can show a
// message and keep scanning.
func (s *Service) Scan(ctx context.Context, in ScanRequest) (ScanResponse, error) {
	nis := strings.TrimSpace(in.NIS)
	if nis == "" {
		return ScanResponse{}, apperr.Invalid("nis is required")
	}

	st, err := s.roster.GetByNIS(ctx, nis)
	if err != nil {
		return ScanResponse{}, err
	}
	if st == nil {
		return ScanResponse{
			Result:  ScanUnregistered,
			Message: "NIS not registered",
		}, nil
	}

	now := s.now()
	slot, ok := s.schedule.Admit(now)
	if !ok {
		return ScanResponse{
			Result:  ScanRejected,
			Message: "scanning is only allowed inside the schedule windows",
		}, nil
	}

	rec, _, err := s.store.Upsert(ctx, now.Format(DateLayout), st.ID, st.ClassID, StatusHadir, nil)
	if err != nil {
		return ScanResponse{}, err
	}

	dto := rec.toDTO()
	return ScanResponse{
		Result: ScanAdmitted,
		Slot:   slot.Label,
		Student: &ScanStudent{
			ID:        st.ID,
			NIS:       st.NIS,
			Name:      st.Name,
			ClassID:   st.ClassID,
			ClassName: st.ClassName,
		},
		Record: &dto,
	}, nil
}

// SetStatus is the manual override path: any of the four persisted
// statuses, no schedule gate. The student must exist so the ledger never
// gains orphan rows, and the write must land inside the caller's scope.
func (s *Service) SetStatus(ctx context.Context, scope access.Scope, in SetStatusRequest) (RecordResponse, error) {
	if scope.StudentID != "" {
		return RecordResponse{}, apperr.Forbidden("students cannot write attendance")
	}
	if strings.TrimSpace(in.StudentID) == "" {
		return RecordResponse{}, apperr.Invalid("studentId is required")
	}
	status := Status(strings.ToUpper(strings.TrimSpace(in.Status)))
	if !status.Valid() {
		return RecordResponse{}, apperr.Invalid("status must be HADIR, SAKIT, IZIN or ALPA")
	}
	date, err := s.parseDate(in.Date)
	if err != nil {
		return RecordResponse{}, err
	}

	st, err := s.roster.GetByID(ctx, in.StudentID)
	if err != nil {
		return RecordResponse{}, err
	}
	if st == nil {
		return RecordResponse{}, apperr.NotFound("student not found")
	}

	// the student's real class decides visibility; a caller-supplied
	// classId must agree with it, never substitute for it
	if !scope.AllowsClass(st.ClassID) {
		return RecordResponse{}, apperr.Forbidden("student is outside your scope")
	}
	if v := ids.Normalize(in.ClassID); v != "" && v != ids.Normalize(st.ClassID) {
		return RecordResponse{}, apperr.Invalid("classId does not match the student's class")
	}

	rec, _, err := s.store.Upsert(ctx, date, st.ID, st.ClassID, status, in.Note)
	if err != nil {
		return RecordResponse{}, err
	}
	return rec.toDTO(), nil
}

// DayBoard left-joins the class roster against the day's ledger. Roster
// members without a record come back as BELUM, the one place that state
// exists.
func (s *Service) DayBoard(ctx context.Context, scope access.Scope, classID, dateStr string) (BoardResponse, error) {
	if strings.TrimSpace(classID) == "" {
		return BoardResponse{}, apperr.Invalid("classId is required")
	}
	if err := scope.RequireClass(classID); err != nil {
		return BoardResponse{}, err
	}
	date, err := s.parseDate(dateStr)
	if err != nil {
		return BoardResponse{}, err
	}

	roster, err := s.roster.List(ctx, []string{classID})
	if err != nil {
		return BoardResponse{}, err
	}
	records, err := s.store.ListByDate(ctx, date, []string{classID}, scope.StudentID)
	if err != nil {
		return BoardResponse{}, err
	}

	byStudent := make(map[string]Record, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r
	}

	rows := make([]BoardRow, 0, len(roster))
	for _, st := range roster {
		if scope.StudentID != "" && st.ID != scope.StudentID {
			continue
		}
		row := BoardRow{
			StudentID: st.ID,
			NIS:       st.NIS,
			Name:      st.Name,
			Status:    string(StatusBelum),
		}
		if rec, ok := byStudent[st.ID]; ok {
			row.Status = string(rec.Status)
			row.Note = rec.Note
		}
		rows = append(rows, row)
	}

	return BoardResponse{Date: date, ClassID: classID, Rows: rows}, nil
}

// List returns raw ledger rows inside the caller's scope. A class-restricted
// scope with no classes sees nothing; a caller-supplied studentId filter
// cannot reopen it.
func (s *Service) List(ctx context.Context, scope access.Scope, q ListQuery) (ListResponse, error) {
	if scope.StudentID != "" {
		q.StudentID = scope.StudentID
	} else if !scope.All && len(scope.ClassIDs) == 0 {
		return ListResponse{Rows: []RecordResponse{}}, nil
	}
	if err := s.normalizeDates(&q); err != nil {
		return ListResponse{}, err
	}

	rows, total, err := s.store.List(ctx, q, scope)
	if err != nil {
		return ListResponse{}, err
	}

	out := make([]RecordResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDTO())
	}
	return ListResponse{Rows: out, Total: total}, nil
}

func (s *Service) normalizeDates(q *ListQuery) error {
	var err error
	if q.On != "" {
		if q.On, err = s.parseDate(q.On); err != nil {
			return err
		}
	}
	if q.From != "" {
		if q.From, err = s.parseDate(q.From); err != nil {
			return err
		}
	}
	if q.To != "" {
		if q.To, err = s.parseDate(q.To); err != nil {
			return err
		}
	}
	return nil
}

// parseDate accepts "YYYY-MM-DD" or "today"/empty, resolved in the
// business timezone.
func (s *Service) parseDate(v string) (string, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" || v == "today" {
		return s.today(), nil
	}
	if _, err := time.ParseInLocation(DateLayout, v, s.loc); err != nil {
		return "", apperr.Invalid("date must be YYYY-MM-DD or 'today'")
	}
	return v, nil
}
