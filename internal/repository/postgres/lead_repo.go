// internal/repository/postgres/lead_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"studiodesk-service/internal/domain/lead"
	xerrors "studiodesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const leadColumns = `id, name, mobile_number, lead_source, first_enquiry_date, next_follow_up_date,
	remarks, status, position, created_at, updated_at`

type LeadRepository struct {
	db *pgxpool.Pool
	tx *DB
}

func NewLeadRepository(pool *pgxpool.Pool, tx *DB) *LeadRepository {
	return &LeadRepository{db: pool, tx: tx}
}

// List returns every lead ordered the way the board displays them.
func (r *LeadRepository) List(ctx context.Context) ([]lead.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY position ASC, created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []lead.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}

	return leads, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*lead.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	l, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err = notFound(err); xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("lead %d: %w", id, err)
		}
		return nil, fmt.Errorf("failed to find lead: %w", err)
	}
	return l, nil
}

// Create appends the lead at the end of its column.
func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	query := `
		INSERT INTO leads (
			name, mobile_number, lead_source, first_enquiry_date, next_follow_up_date,
			remarks, status, position
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM leads WHERE status = $7)
		)
		RETURNING id, position, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		l.Name, l.MobileNumber, l.LeadSource, l.FirstEnquiryDate, l.NextFollowUpDate,
		l.Remarks, string(l.Status),
	).Scan(&l.ID, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// Update applies a partial update. A status change moves the lead to the end
// of its new column and is recorded in the status history.
func (r *LeadRepository) Update(ctx context.Context, id int64, req *lead.UpdateLeadRequest, changedBy int64) error {
	return r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		current, err := lockLeadStatus(ctx, tx, id)
		if err != nil {
			return err
		}

		sets, args := buildLeadUpdate(req)
		statusChanged := req.Status != nil && lead.Status(*req.Status) != current

		if statusChanged {
			var next int
			err := tx.QueryRow(ctx,
				`SELECT COALESCE(MAX(position) + 1, 0) FROM leads WHERE status = $1`, *req.Status,
			).Scan(&next)
			if err != nil {
				return fmt.Errorf("failed to compute position: %w", err)
			}
			args = append(args, next)
			sets = append(sets, fmt.Sprintf("position = $%d", len(args)))
		}

		sets = append(sets, "updated_at = NOW()")
		args = append(args, id)
		query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}

		if statusChanged {
			return insertStatusChange(ctx, tx, id, current, lead.Status(*req.Status), changedBy)
		}
		return nil
	})
}

// Move persists one drag transition: the lead's new status, the order of the
// affected columns and a history row, all in one transaction.
func (r *LeadRepository) Move(ctx context.Context, mv *lead.StatusMove) error {
	return r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		current, err := lockLeadStatus(ctx, tx, mv.LeadID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`,
			string(mv.To), mv.LeadID,
		)
		if err != nil {
			return fmt.Errorf("failed to update lead status: %w", err)
		}

		for status, ids := range mv.Order {
			if len(ids) == 0 {
				continue
			}
			if err := reorderColumn(ctx, tx, status, ids); err != nil {
				return err
			}
		}

		if current != mv.To {
			return insertStatusChange(ctx, tx, mv.LeadID, current, mv.To, mv.ChangedBy)
		}
		return nil
	})
}

func lockLeadStatus(ctx context.Context, tx pgx.Tx, id int64) (lead.Status, error) {
	var current string
	err := tx.QueryRow(ctx, `SELECT status FROM leads WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if err = notFound(err); xerrors.Is(err, xerrors.ErrNotFound) {
			return "", fmt.Errorf("lead %d: %w", id, err)
		}
		return "", fmt.Errorf("failed to lock lead: %w", err)
	}
	return lead.Status(current), nil
}

// reorderColumn sets position to the index of each id. Leads that left the
// column in the meantime are skipped by the status guard.
func reorderColumn(ctx context.Context, tx pgx.Tx, status lead.Status, ids []int64) error {
	query := `
		UPDATE leads AS l
		SET position = o.ord - 1
		FROM unnest($1::bigint[]) WITH ORDINALITY AS o(id, ord)
		WHERE l.id = o.id AND l.status = $2
	`
	if _, err := tx.Exec(ctx, query, pq.Array(ids), string(status)); err != nil {
		return fmt.Errorf("failed to reorder column %q: %w", status, err)
	}
	return nil
}

// buildLeadUpdate returns the SET clauses and arguments for the non-nil
// fields of req, numbered from $1.
func buildLeadUpdate(req *lead.UpdateLeadRequest) ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.MobileNumber != nil {
		add("mobile_number", *req.MobileNumber)
	}
	if req.LeadSource != nil {
		add("lead_source", *req.LeadSource)
	}
	if req.FirstEnquiryDate != nil {
		add("first_enquiry_date", *req.FirstEnquiryDate)
	}
	if req.NextFollowUpDate != nil {
		add("next_follow_up_date", *req.NextFollowUpDate)
	}
	if req.Remarks != nil {
		add("remarks", *req.Remarks)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}

	return sets, args
}

func scanLead(row pgx.Row) (*lead.Lead, error) {
	var l lead.Lead
	var status string
	err := row.Scan(
		&l.ID, &l.Name, &l.MobileNumber, &l.LeadSource, &l.FirstEnquiryDate, &l.NextFollowUpDate,
		&l.Remarks, &status, &l.Position, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = lead.Status(status)
	return &l, nil
}
