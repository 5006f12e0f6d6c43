package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/ids"
)

// Session is the verified identity tuple handed to every scoped operation.
type Session struct {
	UserID    string
	Name      string
	Role      string
	TeacherID string // set for WALI
	StudentID string // set for SISWA
	ClassID   string // set for SISWA
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, Session, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)
}

type Service struct {
	store  UserStore
	secret []byte
	idgen  ids.Gen
}

func NewService(db *sql.DB, secret []byte) *Service {
	return &Service{store: NewStore(db), secret: secret, idgen: ids.ULIDGen{}}
}

func (s *Service) Login(ctx context.Context, username, password string) (string, Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", Session{}, apperr.Invalid("username and password are required")
	}

	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return "", Session{}, err
	}
	if u == nil || u.IsDisabled {
		// Same response for unknown and disabled accounts.
		return "", Session{}, apperr.Forbidden("authentication failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", Session{}, apperr.Forbidden("authentication failed")
	}

	claims := jwt.MapClaims{
		"sub":  u.ID,
		"name": u.Name,
		"role": u.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	if u.TeacherID != nil {
		claims["teacher_id"] = *u.TeacherID
	}
	if u.StudentID != nil {
		claims["student_id"] = *u.StudentID
	}
	if u.ClassID != nil {
		claims["class_id"] = *u.ClassID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", Session{}, err
	}
	return signed, sessionFromUser(u), nil
}

func sessionFromUser(u *User) Session {
	sess := Session{UserID: u.ID, Name: u.Name, Role: u.Role}
	if u.TeacherID != nil {
		sess.TeacherID = *u.TeacherID
	}
	if u.StudentID != nil {
		sess.StudentID = *u.StudentID
	}
	if u.ClassID != nil {
		sess.ClassID = *u.ClassID
	}
	return sess
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Name) == "" || req.Password == "" {
		return UserResponse{}, apperr.Invalid("name, username, password are required")
	}
	if !ValidRole(req.Role) {
		return UserResponse{}, apperr.Invalid("role must be ADMIN, WALI or SISWA")
	}
	// Role-conditional links: WALI needs its teacher record, SISWA its
	// student record plus class. Extra links are dropped, not stored.
	switch req.Role {
	case RoleWali:
		if req.TeacherID == nil || *req.TeacherID == "" {
			return UserResponse{}, apperr.Invalid("teacher_id is required for role WALI")
		}
		req.StudentID = nil
		req.ClassID = nil
	case RoleSiswa:
		if req.StudentID == nil || *req.StudentID == "" {
			return UserResponse{}, apperr.Invalid("student_id is required for role SISWA")
		}
		req.TeacherID = nil
	default:
		req.TeacherID = nil
		req.StudentID = nil
		req.ClassID = nil
	}

	exists, err := s.store.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return UserResponse{}, err
	}
	if exists != nil {
		return UserResponse{}, apperr.Conflict("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, err
	}

	id, err := s.idgen.New()
	if err != nil {
		return UserResponse{}, err
	}
	u := &User{
		ID:           id,
		Username:     strings.TrimSpace(req.Username),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         req.Role,
		TeacherID:    req.TeacherID,
		StudentID:    req.StudentID,
		ClassID:      req.ClassID,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return UserResponse{}, err
	}
	return UserResponse{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role}, nil
}
