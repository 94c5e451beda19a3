// internal/repository/postgres/schema.go
package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS lead_sources (
		id         BIGSERIAL PRIMARY KEY,
		name       VARCHAR(100) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id                  BIGSERIAL PRIMARY KEY,
		name                VARCHAR(255) NOT NULL,
		mobile_number       VARCHAR(20) NOT NULL,
		lead_source         VARCHAR(100) NOT NULL DEFAULT '',
		first_enquiry_date  DATE,
		next_follow_up_date DATE,
		remarks             TEXT NOT NULL DEFAULT '',
		status              VARCHAR(32) NOT NULL DEFAULT 'Lead',
		position            INTEGER NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_status_position ON leads (status, position)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id         VARCHAR(64) PRIMARY KEY,
		name            VARCHAR(255) NOT NULL,
		mobile_number_1 VARCHAR(20) NOT NULL,
		email           VARCHAR(255) NOT NULL DEFAULT '',
		active          BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS lead_status_history (
		id          BIGSERIAL PRIMARY KEY,
		lead_id     BIGINT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
		from_status VARCHAR(32) NOT NULL,
		to_status   VARCHAR(32) NOT NULL,
		changed_by  BIGINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lead_status_history_lead ON lead_status_history (lead_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS staff (
		id            BIGSERIAL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		full_name     VARCHAR(255) NOT NULL,
		password_hash TEXT NOT NULL,
		role          VARCHAR(32) NOT NULL DEFAULT 'staff',
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables the service needs when they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
