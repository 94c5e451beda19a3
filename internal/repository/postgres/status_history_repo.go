// internal/repository/postgres/status_history_repo.go
package postgres

import (
	"context"
	"fmt"

	"studiodesk-service/internal/domain/lead"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatusHistoryRepository struct {
	db *pgxpool.Pool
}

func NewStatusHistoryRepository(db *pgxpool.Pool) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

// ListByLead returns a lead's transitions, oldest first.
func (r *StatusHistoryRepository) ListByLead(ctx context.Context, leadID int64) ([]lead.StatusChange, error) {
	query := `
		SELECT id, lead_id, from_status, to_status, changed_by, created_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	history := []lead.StatusChange{}
	for rows.Next() {
		var c lead.StatusChange
		var from, to string
		if err := rows.Scan(&c.ID, &c.LeadID, &from, &to, &c.ChangedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		c.FromStatus, c.ToStatus = lead.Status(from), lead.Status(to)
		history = append(history, c)
	}
	return history, rows.Err()
}

func insertStatusChange(ctx context.Context, tx pgx.Tx, leadID int64, from, to lead.Status, changedBy int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO lead_status_history (lead_id, from_status, to_status, changed_by) VALUES ($1, $2, $3, $4)`,
		leadID, string(from), string(to), changedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}
	return nil
}
