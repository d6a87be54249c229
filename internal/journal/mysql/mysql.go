package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/journal"
)

func init() {
	journal.RegisterFactory(journal.DriverMySQL, func(ctx context.Context, cfg *config.JournalConfig) (journal.Repository, error) {
		return NewMySQLRepository(ctx, cfg)
	})
}

type MySQLRepository struct {
	db *sql.DB
}

// NewMySQLRepository connects with cfg.DSN in go-sql-driver format
// (user:pass@tcp(host:3306)/db) and migrates the schema. parseTime is forced on.
func NewMySQLRepository(ctx context.Context, cfg *config.JournalConfig) (*MySQLRepository, error) {
	dsnConfig, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	dsnConfig.ParseTime = true
	dsnConfig.Loc = time.UTC

	db, err := sql.Open("mysql", dsnConfig.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := journal.Migrate(ctx, schemaStore{db: db}, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &MySQLRepository{db: db}, nil
}

const selectColumns = `id, operation, signature, program_id, status, error, addresses, confirmation_ms, created_at`

func (r *MySQLRepository) Save(ctx context.Context, entry *journal.Entry) error {
	addresses, err := json.Marshal(entry.Addresses)
	if err != nil {
		return fmt.Errorf("failed to marshal addresses: %w", err)
	}

	query := `
		INSERT INTO journal_entries (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			signature = VALUES(signature), status = VALUES(status), error = VALUES(error),
			addresses = VALUES(addresses), confirmation_ms = VALUES(confirmation_ms)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.Operation, entry.Signature, entry.ProgramID, string(entry.Status),
		entry.Error, string(addresses), entry.ConfirmationMs, entry.CreatedAt,
	)
	return err
}

func (r *MySQLRepository) FindBySignature(ctx context.Context, signature string) (*journal.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM journal_entries
		WHERE signature = ? ORDER BY created_at DESC LIMIT 1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, signature))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (r *MySQLRepository) FindRecent(ctx context.Context, limit int) ([]*journal.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM journal_entries ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*journal.Entry, error) {
	var (
		entry     journal.Entry
		status    string
		errText   sql.NullString
		addresses []byte
	)
	if err := row.Scan(
		&entry.ID, &entry.Operation, &entry.Signature, &entry.ProgramID, &status,
		&errText, &addresses, &entry.ConfirmationMs, &entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	entry.Status = journal.Status(status)
	entry.Error = errText.String
	if len(addresses) > 0 {
		if err := json.Unmarshal(addresses, &entry.Addresses); err != nil {
			return nil, fmt.Errorf("failed to unmarshal addresses: %w", err)
		}
	}
	return &entry, nil
}

func (r *MySQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *MySQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
