package mysql

import (
	"context"
	"database/sql"

	"github.com/lugondev/go-amm/internal/journal"
)

var schema = []journal.SchemaStep{
	{
		Version:     1,
		Description: "journal entries",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS journal_entries (
				id VARCHAR(36) PRIMARY KEY,
				operation VARCHAR(64) NOT NULL,
				signature VARCHAR(128) NOT NULL DEFAULT '',
				program_id VARCHAR(64) NOT NULL,
				status VARCHAR(16) NOT NULL,
				error TEXT,
				addresses JSON,
				confirmation_ms BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP(6) NOT NULL,
				INDEX idx_journal_signature (signature),
				INDEX idx_journal_created_at (created_at DESC)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	},
}

// schemaStore runs statements one at a time. MySQL commits DDL implicitly, so
// the version row is written only after every statement of a step succeeded.
type schemaStore struct {
	db *sql.DB
}

func (s schemaStore) EnsureVersionTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS journal_schema_versions (
		version INT PRIMARY KEY,
		description VARCHAR(255) NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`)
	return err
}

func (s schemaStore) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM journal_schema_versions`).Scan(&version)
	return version, err
}

func (s schemaStore) Apply(ctx context.Context, step journal.SchemaStep) error {
	for _, stmt := range step.Statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_schema_versions (version, description) VALUES (?, ?)`,
		step.Version, step.Description)
	return err
}
