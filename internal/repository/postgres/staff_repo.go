// internal/repository/postgres/staff_repo.go
package postgres

import (
	"context"
	"fmt"

	"studiodesk-service/internal/domain/auth"
	xerrors "studiodesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StaffRepository struct {
	db *pgxpool.Pool
}

func NewStaffRepository(db *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = `id, email, full_name, password_hash, role, active, last_login_at, created_at, updated_at`

func (r *StaffRepository) Create(ctx context.Context, s *auth.Staff) error {
	query := `
		INSERT INTO staff (email, full_name, password_hash, role, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, s.Email, s.FullName, s.PasswordHash, s.Role, s.Active).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("staff %s: %w", s.Email, xerrors.ErrConflict)
		}
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*auth.Staff, error) {
	return r.findOne(ctx, `SELECT `+staffColumns+` FROM staff WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *StaffRepository) FindByID(ctx context.Context, id int64) (*auth.Staff, error) {
	return r.findOne(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id)
}

func (r *StaffRepository) OwnerExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM staff WHERE role = 'owner')`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check owner: %w", err)
	}
	return exists, nil
}

func (r *StaffRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE staff SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *StaffRepository) findOne(ctx context.Context, query string, arg interface{}) (*auth.Staff, error) {
	var s auth.Staff
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.Email, &s.FullName, &s.PasswordHash, &s.Role, &s.Active,
		&s.LastLoginAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err = notFound(err); xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find staff: %w", err)
	}
	return &s, nil
}
