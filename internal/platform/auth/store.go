package auth

import (
	"context"
	"database/sql"
	"errors"

	"absensi-backend/internal/platform/ids"
)

const (
	RoleAdmin = "ADMIN"
	RoleWali  = "WALI"
	RoleSiswa = "SISWA"
)

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleWali, RoleSiswa:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	Role         string
	TeacherID    *string // WALI link
	StudentID    *string // SISWA link
	ClassID      *string // SISWA class
	IsDisabled   bool
	CreatedAt    string
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) UserStore { return &Store{db: db} }

func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	const q = `
SELECT id, username, name, password_hash, role, teacher_id, student_id, class_id, is_disabled, created_at
FROM users
WHERE username = ?
LIMIT 1
`
	var u User
	var isDisabledInt int
	err := s.db.QueryRowContext(ctx, q, username).Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.TeacherID,
		&u.StudentID,
		&u.ClassID,
		&isDisabledInt,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isDisabledInt != 0 {
		u.IsDisabled = true
	}
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u *User) error {
	const q = `
INSERT INTO users (id, username, name, password_hash, role, teacher_id, student_id, class_id, is_disabled, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q,
		ids.Normalize(u.ID), u.Username, u.Name, u.PasswordHash, u.Role,
		normalizeRef(u.TeacherID), normalizeRef(u.StudentID), normalizeRef(u.ClassID),
	)
	return err
}

func normalizeRef(id *string) any {
	if id == nil || *id == "" {
		return nil
	}
	return ids.Normalize(*id)
}
