// internal/repository/postgres/lead_source_repo.go
package postgres

import (
	"context"
	"fmt"

	"studiodesk-service/internal/domain/lead"
	xerrors "studiodesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadSourceRepository struct {
	db *pgxpool.Pool
}

func NewLeadSourceRepository(db *pgxpool.Pool) *LeadSourceRepository {
	return &LeadSourceRepository{db: db}
}

func (r *LeadSourceRepository) List(ctx context.Context) ([]lead.LeadSource, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM lead_sources ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead sources: %w", err)
	}
	defer rows.Close()

	sources := []lead.LeadSource{}
	for rows.Next() {
		var s lead.LeadSource
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead source: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *LeadSourceRepository) Create(ctx context.Context, name string) (*lead.LeadSource, error) {
	s := lead.LeadSource{Name: name}
	err := r.db.QueryRow(ctx,
		`INSERT INTO lead_sources (name) VALUES ($1) RETURNING id, created_at`, name,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("lead source %q: %w", name, xerrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create lead source: %w", err)
	}
	return &s, nil
}
