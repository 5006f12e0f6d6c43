package classes

import "time"

type classRow struct {
	ID                string
	Name              string
	AcademicYear      string
	Semester          string
	HomeroomTeacherID *string
	HomeroomName      string // "-" when no teacher or teacher deleted
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Class struct {
	ID                string
	Name              string
	AcademicYear      string
	Semester          string
	HomeroomTeacherID string
	HomeroomName      string
}

func (r classRow) toModel() Class {
	c := Class{
		ID:           r.ID,
		Name:         r.Name,
		AcademicYear: r.AcademicYear,
		Semester:     r.Semester,
		HomeroomName: r.HomeroomName,
	}
	if r.HomeroomTeacherID != nil {
		c.HomeroomTeacherID = *r.HomeroomTeacherID
	}
	return c
}

func (c Class) toDTO() ClassResponse {
	return ClassResponse{
		ID:                c.ID,
		Name:              c.Name,
		AcademicYear:      c.AcademicYear,
		Semester:          c.Semester,
		HomeroomTeacherID: c.HomeroomTeacherID,
		HomeroomName:      c.HomeroomName,
	}
}
