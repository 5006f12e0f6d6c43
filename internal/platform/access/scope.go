package access

import (
	"context"

	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/auth"
	"absensi-backend/internal/platform/ids"
)

// Scope is the caller's visibility window over classes, students and
// attendance rows. Every listing/aggregation query intersects with it
// before touching the store; a caller-supplied filter can only shrink it.
type Scope struct {
	All       bool
	ClassIDs  []string // WALI: homeroom classes
	StudentID string   // SISWA: own record only
}

// MatchAll is the unrestricted admin scope.
func MatchAll() Scope { return Scope{All: true} }

// ForClasses restricts to a homeroom class set.
func ForClasses(classIDs []string) Scope {
	norm := make([]string, 0, len(classIDs))
	for _, id := range classIDs {
		norm = append(norm, ids.Normalize(id))
	}
	return Scope{ClassIDs: norm}
}

// ForStudent restricts to a single student and their class.
func ForStudent(studentID, classID string) Scope {
	sc := Scope{StudentID: ids.Normalize(studentID)}
	if classID != "" {
		sc.ClassIDs = []string{ids.Normalize(classID)}
	}
	return sc
}

func (s Scope) AllowsClass(classID string) bool {
	if s.All {
		return true
	}
	classID = ids.Normalize(classID)
	for _, id := range s.ClassIDs {
		if id == classID {
			return true
		}
	}
	return false
}

// NarrowClass intersects a caller-supplied class filter with the scope.
// An out-of-scope id leaves the scope unchanged: listings for a WALI who
// asks for someone else's class still see only their own classes.
func (s Scope) NarrowClass(classID string) Scope {
	classID = ids.Normalize(classID)
	if classID == "" {
		return s
	}
	if !s.AllowsClass(classID) {
		return s
	}
	out := s
	out.All = false
	out.ClassIDs = []string{classID}
	return out
}

// RequireClass is the strict variant for direct operations (export, day
// board, single-class reads): an out-of-scope class id is an error, not a
// silent narrowing.
func (s Scope) RequireClass(classID string) error {
	if classID == "" {
		return apperr.Invalid("classId is required")
	}
	if !s.AllowsClass(classID) {
		return apperr.Forbidden("class is outside your scope")
	}
	return nil
}

// ClassLookup resolves homeroom ownership; implemented by the classes store.
type ClassLookup interface {
	IDsByHomeroomTeacher(ctx context.Context, teacherID string) ([]string, error)
}

type Resolver struct {
	classes ClassLookup
}

func NewResolver(classes ClassLookup) *Resolver {
	return &Resolver{classes: classes}
}

// Resolve builds the scope for a verified session. WALI class sets come
// from the classes table at request time, not from the token, so homeroom
// reassignments take effect without a re-login.
func (r *Resolver) Resolve(ctx context.Context, sess auth.Session) (Scope, error) {
	switch sess.Role {
	case auth.RoleAdmin:
		return MatchAll(), nil
	case auth.RoleWali:
		if sess.TeacherID == "" {
			return Scope{}, apperr.Forbidden("account has no teacher link")
		}
		classIDs, err := r.classes.IDsByHomeroomTeacher(ctx, sess.TeacherID)
		if err != nil {
			return Scope{}, err
		}
		return ForClasses(classIDs), nil
	case auth.RoleSiswa:
		if sess.StudentID == "" {
			return Scope{}, apperr.Forbidden("account has no student link")
		}
		return ForStudent(sess.StudentID, sess.ClassID), nil
	default:
		return Scope{}, apperr.Forbidden("unknown role")
	}
}
