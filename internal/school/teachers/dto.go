package teachers

type CreateTeacherRequest struct {
	Name       string  `json:"name" binding:"required"`
	EmployeeNo *string `json:"nip,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

type UpdateTeacherRequest struct {
	Name       string  `json:"name" binding:"required"`
	EmployeeNo *string `json:"nip,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

type TeacherResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EmployeeNo string `json:"nip"`
	Phone      string `json:"phone"`
}
