package teachers

import "time"

type teacherRow struct {
	ID         string
	Name       string
	EmployeeNo *string
	Phone      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Teacher struct {
	ID         string
	Name       string
	EmployeeNo string
	Phone      string
}

func (r teacherRow) toModel() Teacher {
	t := Teacher{ID: r.ID, Name: r.Name}
	if r.EmployeeNo != nil {
		t.EmployeeNo = *r.EmployeeNo
	}
	if r.Phone != nil {
		t.Phone = *r.Phone
	}
	return t
}

func (t Teacher) toDTO() TeacherResponse {
	return TeacherResponse{
		ID:         t.ID,
		Name:       t.Name,
		EmployeeNo: t.EmployeeNo,
		Phone:      t.Phone,
	}
}
