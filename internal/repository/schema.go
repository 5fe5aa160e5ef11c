package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		matricula TEXT,
		curso TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
	`CREATE TABLE IF NOT EXISTS inspections (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		student_name TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		location TEXT NOT NULL,
		status TEXT NOT NULL,
		media_url TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		admin_response TEXT,
		admin_id TEXT,
		feedback_rating INTEGER,
		feedback_comment TEXT,
		feedback_created_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_student ON inspections (student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_created ON inspections (created_at DESC)`,
}

// EnsureSchema creates the tables used by the SQL repositories. The DDL is shared by
// PostgreSQL and SQLite.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
