package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lugondev/go-amm/internal/journal"
)

var schema = []journal.SchemaStep{
	{
		Version:     1,
		Description: "journal entries",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS journal_entries (
				id TEXT PRIMARY KEY,
				operation TEXT NOT NULL,
				signature TEXT NOT NULL DEFAULT '',
				program_id TEXT NOT NULL,
				status TEXT NOT NULL,
				error TEXT NOT NULL DEFAULT '',
				addresses JSONB,
				confirmation_ms BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_journal_signature ON journal_entries(signature)`,
			`CREATE INDEX IF NOT EXISTS idx_journal_created_at ON journal_entries(created_at DESC)`,
		},
	},
}

// schemaStore runs each step inside its own transaction; Postgres DDL is
// transactional so a failed step leaves no trace.
type schemaStore struct {
	pool *pgxpool.Pool
}

func (s schemaStore) EnsureVersionTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS journal_schema_versions (
		version INT PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (s schemaStore) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM journal_schema_versions`).Scan(&version)
	return version, err
}

func (s schemaStore) Apply(ctx context.Context, step journal.SchemaStep) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, stmt := range step.Statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO journal_schema_versions (version, description) VALUES ($1, $2)`,
			step.Version, step.Description)
		return err
	})
}
