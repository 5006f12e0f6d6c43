package attendance

import "time"

const (
	DateLayout       = "2006-01-02"
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Scan outcomes for the kiosk. All three are regular responses: a rejected
// or unregistered scan is recoverable at the kiosk, not a server fault.
const (
	ScanAdmitted     = "admitted"
	ScanRejected     = "rejected"
	ScanUnregistered = "unregistered"
)

type ScanRequest struct {
	NIS string `json:"nis" binding:"required"`
}

type ScanStudent struct {
	ID        string `json:"id"`
	NIS       string `json:"nis"`
	Name      string `json:"name"`
	ClassID   string `json:"classId"`
	ClassName string `json:"className"`
}

type ScanResponse struct {
	Result  string          `json:"result"`
	Slot    string          `json:"slot,omitempty"`
	Message string          `json:"message,omitempty"`
	Student *ScanStudent    `json:"student,omitempty"`
	Record  *RecordResponse `json:"record,omitempty"`
}

type SetStatusRequest struct {
	Date      string  `json:"date" binding:"required"` // YYYY-MM-DD or "today"
	StudentID string  `json:"studentId" binding:"required"`
	ClassID   string  `json:"classId,omitempty"`
	Status    string  `json:"status" binding:"required"` // HADIR|SAKIT|IZIN|ALPA
	Note      *string `json:"note,omitempty"`
}

type RecordResponse struct {
	AttendanceID uint64    `json:"attendance_id"`
	Date         string    `json:"date"`
	StudentID    string    `json:"studentId"`
	ClassID      string    `json:"classId"`
	Status       string    `json:"status"`
	Note         *string   `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListQuery struct {
	StudentID string
	On        string
	From      string
	To        string
	Limit     int
	Offset    int
}

type ListResponse struct {
	Rows  []RecordResponse `json:"rows"`
	Total int64            `json:"total"`
}

// BoardRow is one roster member on the day board; Status is BELUM when no
// record exists for the day.
type BoardRow struct {
	StudentID string  `json:"studentId"`
	NIS       string  `json:"nis"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Note      *string `json:"note,omitempty"`
}

type BoardResponse struct {
	Date    string     `json:"date"`
	ClassID string     `json:"classId"`
	Rows    []BoardRow `json:"rows"`
}
