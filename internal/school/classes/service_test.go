package classes

import (
	"context"
	"errors"
	"testing"

	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/ids"
)

const (
	classA = "01HCLASSA00000000000000000"
	classB = "01HCLASSB00000000000000000"
)

type fakeClassStore struct {
	classes  map[string]Class
	students map[string]int64 // class id -> assigned student count
}

func newFakeClassStore(cs ...Class) *fakeClassStore {
	s := &fakeClassStore{
		classes:  make(map[string]Class),
		students: make(map[string]int64),
	}
	for _, c := range cs {
		s.classes[c.ID] = c
	}
	return s
}

func (s *fakeClassStore) Insert(ctx context.Context, c Class, homeroomTeacherID *string) error {
	if homeroomTeacherID != nil {
		c.HomeroomTeacherID = *homeroomTeacherID
	}
	s.classes[c.ID] = c
	return nil
}

func (s *fakeClassStore) Update(ctx context.Context, c Class, homeroomTeacherID *string) (int64, error) {
	old, ok := s.classes[c.ID]
	if !ok {
		return 0, nil
	}
	c.HomeroomName = old.HomeroomName
	if homeroomTeacherID != nil {
		c.HomeroomTeacherID = *homeroomTeacherID
	}
	s.classes[c.ID] = c
	return 1, nil
}

func (s *fakeClassStore) DeleteGuarded(ctx context.Context, id string) (bool, int64, error) {
	id = ids.Normalize(id)
	if n := s.students[id]; n > 0 {
		return false, n, nil
	}
	if _, ok := s.classes[id]; !ok {
		return false, 0, nil
	}
	delete(s.classes, id)
	return true, 0, nil
}

func (s *fakeClassStore) GetByID(ctx context.Context, id string) (*Class, error) {
	if c, ok := s.classes[ids.Normalize(id)]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s *fakeClassStore) List(ctx context.Context) ([]Class, error) {
	out := make([]Class, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeClassStore) IDsByHomeroomTeacher(ctx context.Context, teacherID string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func newTestService(store ClassStore) *Service {
	return &Service{store: store, idgen: ids.ULIDGen{}}
}

func TestDeleteGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("refused while students remain", func(t *testing.T) {
		store := newFakeClassStore(Class{ID: classA, Name: "X-A"})
		store.students[classA] = 3
		svc := newTestService(store)

		err := svc.Delete(ctx, classA)
		if got := apperr.FromErr(err).Code; got != apperr.CodeConflict {
			t.Fatalf("code = %q, want CONFLICT", got)
		}
		if _, ok := store.classes[classA]; !ok {
			t.Error("class was deleted despite the guard")
		}
	})

	t.Run("empty class is removed", func(t *testing.T) {
		store := newFakeClassStore(Class{ID: classA, Name: "X-A"})
		svc := newTestService(store)

		if err := svc.Delete(ctx, classA); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok := store.classes[classA]; ok {
			t.Error("class still present after delete")
		}
	})

	t.Run("unknown class", func(t *testing.T) {
		svc := newTestService(newFakeClassStore())
		err := svc.Delete(ctx, classA)
		if got := apperr.FromErr(err).Code; got != apperr.CodeNotFound {
			t.Errorf("code = %q, want NOT_FOUND", got)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		svc := newTestService(newFakeClassStore())
		err := svc.Delete(ctx, "  ")
		if got := apperr.FromErr(err).Code; got != apperr.CodeInvalidArgument {
			t.Errorf("code = %q, want INVALID_ARGUMENT", got)
		}
	})
}

func TestListScoped(t *testing.T) {
	ctx := context.Background()
	store := newFakeClassStore(
		Class{ID: classA, Name: "X-A"},
		Class{ID: classB, Name: "X-B"},
	)
	svc := newTestService(store)

	all, err := svc.List(ctx, access.MatchAll())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d classes, want 2", len(all))
	}

	own, err := svc.List(ctx, access.ForClasses([]string{classA}))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(own) != 1 || own[0].ID != classA {
		t.Errorf("wali sees %v, want only own class", own)
	}
}

func TestGetScoped(t *testing.T) {
	ctx := context.Background()
	store := newFakeClassStore(Class{ID: classA, Name: "X-A"})
	svc := newTestService(store)

	got, err := svc.Get(ctx, access.MatchAll(), classA)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "X-A" {
		t.Errorf("name = %q", got.Name)
	}

	_, err = svc.Get(ctx, access.ForClasses([]string{classB}), classA)
	if got := apperr.FromErr(err).Code; got != apperr.CodeForbidden {
		t.Errorf("code = %q, want FORBIDDEN", got)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeClassStore())

	_, err := svc.Create(ctx, CreateClassRequest{Name: "X-A"})
	if got := apperr.FromErr(err).Code; got != apperr.CodeInvalidArgument {
		t.Errorf("code = %q, want INVALID_ARGUMENT", got)
	}

	got, err := svc.Create(ctx, CreateClassRequest{
		Name: " X-A ", AcademicYear: "2024/2025", Semester: "Ganjil",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.Name != "X-A" {
		t.Errorf("name = %q, want trimmed X-A", got.Name)
	}
	if !ids.Valid(got.ID) {
		t.Errorf("id %q is not a valid ulid", got.ID)
	}
}
