package classes

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"

	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/ids"
)

type Service struct {
	store ClassStore
	idgen ids.Gen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), idgen: ids.ULIDGen{}}
}

// Store exposes the class store for wiring the scope resolver in main.
func (s *Service) Store() ClassStore { return s.store }

func (s *Service) Create(ctx context.Context, in CreateClassRequest) (ClassResponse, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.AcademicYear) == "" || strings.TrimSpace(in.Semester) == "" {
		return ClassResponse{}, apperr.Invalid("name, academicYear, semester are required")
	}

	id, err := s.idgen.New()
	if err != nil {
		return ClassResponse{}, err
	}
	c := Class{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		AcademicYear: strings.TrimSpace(in.AcademicYear),
		Semester:     strings.TrimSpace(in.Semester),
	}
	if err := s.store.Insert(ctx, c, in.HomeroomTeacherID); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1452 {
			return ClassResponse{}, apperr.Invalid("homeroomTeacherId does not exist")
		}
		return ClassResponse{}, err
	}

	got, err := s.store.GetByID(ctx, id)
	if err != nil {
		return ClassResponse{}, err
	}
	if got == nil {
		return ClassResponse{}, apperr.Internal("inserted but not found")
	}
	return got.toDTO(), nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateClassRequest) (ClassResponse, error) {
	if strings.TrimSpace(id) == "" {
		return ClassResponse{}, apperr.Invalid("id is required")
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.AcademicYear) == "" || strings.TrimSpace(in.Semester) == "" {
		return ClassResponse{}, apperr.Invalid("name, academicYear, semester are required")
	}

	c := Class{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		AcademicYear: strings.TrimSpace(in.AcademicYear),
		Semester:     strings.TrimSpace(in.Semester),
	}
	n, err := s.store.Update(ctx, c, in.HomeroomTeacherID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1452 {
			return ClassResponse{}, apperr.Invalid("homeroomTeacherId does not exist")
		}
		return ClassResponse{}, err
	}
	if n == 0 {
		return ClassResponse{}, apperr.NotFound("class not found")
	}

	got, err := s.store.GetByID(ctx, id)
	if err != nil {
		return ClassResponse{}, err
	}
	if got == nil {
		return ClassResponse{}, apperr.NotFound("class not found")
	}
	return got.toDTO(), nil
}

// Delete refuses while any student still references the class; the caller
// has to move or remove those students first.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Invalid("id is required")
	}

	deleted, studentCount, err := s.store.DeleteGuarded(ctx, id)
	if err != nil {
		return err
	}
	if studentCount > 0 {
		return apperr.Conflict("class still has students assigned")
	}
	if !deleted {
		return apperr.NotFound("class not found")
	}
	return nil
}

func (s *Service) List(ctx context.Context, scope access.Scope) ([]ClassResponse, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ClassResponse, 0, len(rows))
	for _, c := range rows {
		if !scope.AllowsClass(c.ID) {
			continue
		}
		out = append(out, c.toDTO())
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, scope access.Scope, id string) (ClassResponse, error) {
	if strings.TrimSpace(id) == "" {
		return ClassResponse{}, apperr.Invalid("id is required")
	}
	if err := scope.RequireClass(id); err != nil {
		return ClassResponse{}, err
	}

	got, err := s.store.GetByID(ctx, id)
	if err != nil {
		return ClassResponse{}, err
	}
	if got == nil {
		return ClassResponse{}, apperr.NotFound("class not found")
	}
	return got.toDTO(), nil
}
