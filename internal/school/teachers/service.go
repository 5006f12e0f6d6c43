package teachers

import (
	"context"
	"database/sql"
	"strings"

	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/ids"
)

type Service struct {
	store TeacherStore
	idgen ids.Gen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), idgen: ids.ULIDGen{}}
}

func (s *Service) Create(ctx context.Context, in CreateTeacherRequest) (TeacherResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return TeacherResponse{}, apperr.Invalid("name is required")
	}

	id, err := s.idgen.New()
	if err != nil {
		return TeacherResponse{}, err
	}
	t := Teacher{ID: id, Name: strings.TrimSpace(in.Name)}
	if in.EmployeeNo != nil {
		t.EmployeeNo = strings.TrimSpace(*in.EmployeeNo)
	}
	if in.Phone != nil {
		t.Phone = strings.TrimSpace(*in.Phone)
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return TeacherResponse{}, err
	}
	return t.toDTO(), nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateTeacherRequest) (TeacherResponse, error) {
	if strings.TrimSpace(id) == "" {
		return TeacherResponse{}, apperr.Invalid("id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return TeacherResponse{}, apperr.Invalid("name is required")
	}

	t := Teacher{ID: id, Name: strings.TrimSpace(in.Name)}
	if in.EmployeeNo != nil {
		t.EmployeeNo = strings.TrimSpace(*in.EmployeeNo)
	}
	if in.Phone != nil {
		t.Phone = strings.TrimSpace(*in.Phone)
	}

	n, err := s.store.Update(ctx, t)
	if err != nil {
		return TeacherResponse{}, err
	}
	if n == 0 {
		return TeacherResponse{}, apperr.NotFound("teacher not found")
	}

	got, err := s.store.GetByID(ctx, id)
	if err != nil {
		return TeacherResponse{}, err
	}
	if got == nil {
		return TeacherResponse{}, apperr.NotFound("teacher not found")
	}
	return got.toDTO(), nil
}

// Delete refuses while the teacher is homeroom of any class; unassign the
// class first.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Invalid("id is required")
	}

	deleted, homeroomCount, err := s.store.DeleteGuarded(ctx, id)
	if err != nil {
		return err
	}
	if homeroomCount > 0 {
		return apperr.Conflict("teacher is still homeroom of a class")
	}
	if !deleted {
		return apperr.NotFound("teacher not found")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]TeacherResponse, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TeacherResponse, 0, len(rows))
	for _, t := range rows {
		out = append(out, t.toDTO())
	}
	return out, nil
}
