package report

const (
	DateLayout = "2006-01-02"

	// DefaultRankLimit matches the dashboard's top-5 lists.
	DefaultRankLimit = 5
	MaxRankLimit     = 50
)

// RollupRow is one student's per-status tallies over the queried range.
// Display fields fall back to "-" when the student record no longer
// exists; the tallies survive the orphaning.
type RollupRow struct {
	StudentID string `json:"studentId"`
	NIS       string `json:"nis"`
	Name      string `json:"name"`
	Hadir     int64  `json:"hadir"`
	Sakit     int64  `json:"sakit"`
	Izin      int64  `json:"izin"`
	Alpa      int64  `json:"alpa"`
	Total     int64  `json:"total"`
}

type RollupQuery struct {
	ClassID   string
	StudentID string
	Start     string // inclusive, empty = unbounded
	End       string // inclusive, empty = unbounded
}

type RollupResponse struct {
	Rows []RollupRow `json:"rows"`
}

type RankRow struct {
	NIS       string `json:"nis"`
	Name      string `json:"name"`
	ClassName string `json:"kelas"`
	Total     int64  `json:"total"`
}

type ClassCountRow struct {
	ClassID   string `json:"classId"`
	ClassName string `json:"className"`
	Students  int64  `json:"students"`
}

// StatusCounts is today's per-status tally for the dashboard chart.
type StatusCounts struct {
	Date  string `json:"date"`
	Hadir int64  `json:"hadir"`
	Sakit int64  `json:"sakit"`
	Izin  int64  `json:"izin"`
	Alpa  int64  `json:"alpa"`
}
