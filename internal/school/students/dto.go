package students

type CreateStudentRequest struct {
	NIS     string `json:"nis" binding:"required"`
	Name    string `json:"name" binding:"required"`
	ClassID string `json:"classId" binding:"required"`
}

type UpdateStudentRequest struct {
	NIS     string `json:"nis" binding:"required"`
	Name    string `json:"name" binding:"required"`
	ClassID string `json:"classId" binding:"required"`
}

type StudentResponse struct {
	ID        string `json:"id"`
	NIS       string `json:"nis"`
	Name      string `json:"name"`
	ClassID   string `json:"classId"`
	ClassName string `json:"className"`
}
