// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"fmt"

	"studiodesk-service/internal/domain/lead"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts the user unless one with the same user_id exists. It
// reports whether a row was written.
func (r *UserRepository) Upsert(ctx context.Context, u *lead.User) (bool, error) {
	query := `
		INSERT INTO users (user_id, name, mobile_number_1, email, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, u.UserID, u.Name, u.MobileNumber1, u.Email, u.Active, u.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert user %s: %w", u.UserID, err)
	}
	return tag.RowsAffected() > 0, nil
}
