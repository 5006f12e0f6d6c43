package students

import "time"

type studentRow struct {
	ID        string
	NIS       string
	Name      string
	ClassID   string
	ClassName string // "-" when the class no longer resolves
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Student is the canonical record the rest of the system consumes; the
// kiosk scan pipeline takes ClassID as the snapshot for the ledger write.
type Student struct {
	ID        string
	NIS       string
	Name      string
	ClassID   string
	ClassName string
}

func (r studentRow) toModel() Student {
	return Student{
		ID:        r.ID,
		NIS:       r.NIS,
		Name:      r.Name,
		ClassID:   r.ClassID,
		ClassName: r.ClassName,
	}
}

func (s Student) toDTO() StudentResponse {
	return StudentResponse{
		ID:        s.ID,
		NIS:       s.NIS,
		Name:      s.Name,
		ClassID:   s.ClassID,
		ClassName: s.ClassName,
	}
}
