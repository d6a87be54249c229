package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/journal"
)

func init() {
	journal.RegisterFactory(journal.DriverPostgres, func(ctx context.Context, cfg *config.JournalConfig) (journal.Repository, error) {
		return NewPostgresRepository(ctx, cfg)
	})
}

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects with cfg.DSN, a postgres:// URL or key=value
// string, and migrates the schema.
func NewPostgresRepository(ctx context.Context, cfg *config.JournalConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := journal.Migrate(ctx, schemaStore{pool: pool}, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

const selectColumns = `id, operation, signature, program_id, status, error, addresses, confirmation_ms, created_at`

func (r *PostgresRepository) Save(ctx context.Context, entry *journal.Entry) error {
	addresses, err := json.Marshal(entry.Addresses)
	if err != nil {
		return fmt.Errorf("failed to marshal addresses: %w", err)
	}

	query := `
		INSERT INTO journal_entries (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			signature = $3, status = $5, error = $6, addresses = $7, confirmation_ms = $8
	`
	_, err = r.pool.Exec(ctx, query,
		entry.ID, entry.Operation, entry.Signature, entry.ProgramID, string(entry.Status),
		entry.Error, string(addresses), entry.ConfirmationMs, entry.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) FindBySignature(ctx context.Context, signature string) (*journal.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM journal_entries
		WHERE signature = $1 ORDER BY created_at DESC LIMIT 1`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, signature))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (r *PostgresRepository) FindRecent(ctx context.Context, limit int) ([]*journal.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM journal_entries ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*journal.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*journal.Entry, error) {
	var (
		entry     journal.Entry
		status    string
		addresses []byte
	)
	if err := row.Scan(
		&entry.ID, &entry.Operation, &entry.Signature, &entry.ProgramID, &status,
		&entry.Error, &addresses, &entry.ConfirmationMs, &entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	entry.Status = journal.Status(status)
	if len(addresses) > 0 {
		if err := json.Unmarshal(addresses, &entry.Addresses); err != nil {
			return nil, fmt.Errorf("failed to unmarshal addresses: %w", err)
		}
	}
	return &entry, nil
}

func (r *PostgresRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
