// internal/domain/auth/entity.go
package auth

import "time"

// Staff is a studio employee allowed to work the pipeline.
type Staff struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	FullName     string     `json:"full_name" db:"full_name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	Active       bool       `json:"active" db:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (s *Staff) Info() StaffInfo {
	return StaffInfo{
		ID:       s.ID,
		Email:    s.Email,
		FullName: s.FullName,
		Roles:    []string{s.Role},
	}
}
