package classes

type CreateClassRequest struct {
	Name              string  `json:"name" binding:"required"`
	AcademicYear      string  `json:"academicYear" binding:"required"`
	Semester          string  `json:"semester" binding:"required"`
	HomeroomTeacherID *string `json:"homeroomTeacherId,omitempty"`
}

type UpdateClassRequest struct {
	Name              string  `json:"name" binding:"required"`
	AcademicYear      string  `json:"academicYear" binding:"required"`
	Semester          string  `json:"semester" binding:"required"`
	HomeroomTeacherID *string `json:"homeroomTeacherId,omitempty"`
}

type ClassResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	AcademicYear      string `json:"academicYear"`
	Semester          string `json:"semester"`
	HomeroomTeacherID string `json:"homeroomTeacherId"`
	HomeroomName      string `json:"homeroomTeacherName"`
}
