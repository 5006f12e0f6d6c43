package students

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
	store StudentStore
	idgen ids.Gen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), idgen: ids.ULIDGen{}}
}

// ResolveByNIS maps a scanned code to the canonical student record. Exact
// match on the business key only; a miss must read as "NIS not registered"
// on the kiosk, not as a generic failure.
func (s *Service) ResolveByNIS(ctx context.Context, code string) (Student, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Student{}, apperr.Invalid("nis is required")
	}
	st, err := s.store.GetByNIS(ctx, code)
	if err != nil {
		return Student{}, err
	}
	if st == nil {
		return Student{}, apperr.NotFound("NIS not registered")
	}
	return *st, nil
}

func (s *Service) Create(ctx context.Context, in CreateStudentRequest) (StudentResponse, error) {
	if strings.TrimSpace(in.NIS) == "" || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.ClassID) == "" {
		return StudentResponse{}, apperr.Invalid("nis, name, classId are required")
	}
	if !ids.Valid(in.ClassID) {
		return StudentResponse{}, apperr.Invalid("classId is not a valid id")
	}

	id, err := s.idgen.New()
	if err != nil {
		return StudentResponse{}, err
	}
	st := Student{
		ID:      id,
		NIS:     strings.TrimSpace(in.NIS),
		Name:    strings.TrimSpace(in.Name),
		ClassID: in.ClassID,
	}
	if err := s.store.Insert(ctx, st); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			switch me.Number {
			case 1062: // duplicate key
				return StudentResponse{}, apperr.Conflict("nis already registered")
			case 1452: // foreign key constraint fails
				return StudentResponse{}, apperr.Invalid("classId does not exist")
			}
		}
		return StudentResponse{}, err
	}

	got, err := s.store.GetByID(ctx, id)
	if err != nil {
		return StudentResponse{}, err
	}
	if got == nil {
		return StudentResponse{}, apperr.Internal("inserted but not found")
	}
	return got.toDTO(), nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateStudentRequest) (StudentResponse, error) {
	if strings.TrimSpace(id) == "" {
		return StudentResponse{}, apperr.Invalid("id is required")
	}
	if strings.TrimSpace(in.NIS) == "" || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.ClassID) == "" {
		return StudentResponse{}, apperr.Invalid("nis, name, classId are required")
	}
	if !ids.Valid(in.ClassID) {
		return StudentResponse{}, apperr.Invalid("classId is not a valid id")
	}

	n, err := s.store.Update(ctx, Student{
		ID:      id,
		NIS:     strings.TrimSpace(in.NIS),
		Name:    strings.TrimSpace(in.Name),
		ClassID: in.ClassID,
	})
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			switch me.Number {
			case 1062:
				return StudentResponse{}, apperr.Conflict("nis already registered")
			case 1452:
				return StudentResponse{}, apperr.Invalid("classId does not exist")
			}
		}
		return StudentResponse{}, err
	}
	if n == 0 {
		return StudentResponse{}, apperr.NotFound("student not found")
	}

	got, err := s.store.GetByID(ctx, id)
	if err != nil {
		return StudentResponse{}, err
	}
	if got == nil {
		return StudentResponse{}, apperr.NotFound("student not found")
	}
	return got.toDTO(), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Invalid("id is required")
	}
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("student not found")
	}
	return nil
}

// List returns the roster visible to the caller. A classId filter is an
// intersection with the scope, never an escape from it.
func (s *Service) List(ctx context.Context, scope access.Scope, classID string) ([]StudentResponse, error) {
	scope = scope.NarrowClass(classID)

	var classIDs []string
	if !scope.All {
		if len(scope.ClassIDs) == 0 && scope.StudentID == "" {
			return []StudentResponse{}, nil
		}
		classIDs = scope.ClassIDs
	}

	rows, err := s.store.List(ctx, classIDs)
	if err != nil {
		return nil, err
	}

	out := make([]StudentResponse, 0, len(rows))
	for _, st := range rows {
		if scope.StudentID != "" && st.ID != scope.StudentID {
			continue
		}
		out = append(out, st.toDTO())
	}
	return out, nil
}
