package attendance

import "time"

// Status is the persisted attendance state. BELUM is deliberately not a
// member of the persisted set: it is the absence of a row, synthesized by
// the day board when a roster member has not been marked.
type Status string

const (
	StatusHadir Status = "HADIR"
	StatusSakit Status = "SAKIT"
	StatusIzin  Status = "IZIN"
	StatusAlpa  Status = "ALPA"

	// StatusBelum is display-only, never written.
	StatusBelum Status = "BELUM"
)

func (s Status) Valid() bool {
	switch s {
	case StatusHadir, StatusSakit, StatusIzin, StatusAlpa:
		return true
	default:
		return false
	}
}

type recordRow struct {
	AttendanceID uint64
	Date         string // DATE -> "YYYY-MM-DD"
	StudentID    string
	ClassID      string
	Status       string
	Note         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Record is one attendance fact: exactly one per (student, date), enforced
// by the store's unique-key upsert.
type Record struct {
	AttendanceID uint64
	Date         string
	StudentID    string
	ClassID      string // class snapshot at write time
	Status       Status
	Note         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r recordRow) toModel() Record {
	return Record{
		AttendanceID: r.AttendanceID,
		Date:         r.Date,
		StudentID:    r.StudentID,
		ClassID:      r.ClassID,
		Status:       Status(r.Status),
		Note:         r.Note,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func (r Record) toDTO() RecordResponse {
	return RecordResponse{
		AttendanceID: r.AttendanceID,
		Date:         r.Date,
		StudentID:    r.StudentID,
		ClassID:      r.ClassID,
		Status:       string(r.Status),
		Note:         r.Note,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
