// Package journal keeps an append-only record of submitted transactions.
//
// Backends register a Factory under a driver name from their init function;
// import the driver package for its side effect to make it available to Open.
package journal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lugondev/go-amm/internal/config"
)

// Status of a journaled submission.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Driver names.
const (
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongoDB  = "mongodb"
)

// Entry is one submission.
type Entry struct {
	ID             string            `json:"id" yaml:"id" bson:"_id" db:"id"`
	Operation      string            `json:"operation" yaml:"operation" bson:"operation" db:"operation"`
	Signature      string            `json:"signature,omitempty" yaml:"signature,omitempty" bson:"signature" db:"signature"`
	ProgramID      string            `json:"program_id" yaml:"program_id" bson:"program_id" db:"program_id"`
	Status         Status            `json:"status" yaml:"status" bson:"status" db:"status"`
	Error          string            `json:"error,omitempty" yaml:"error,omitempty" bson:"error,omitempty" db:"error"`
	Addresses      map[string]string `json:"addresses,omitempty" yaml:"addresses,omitempty" bson:"addresses,omitempty" db:"addresses"`
	ConfirmationMs int64             `json:"confirmation_ms" yaml:"confirmation_ms" bson:"confirmation_ms" db:"confirmation_ms"`
	CreatedAt      time.Time         `json:"created_at" yaml:"created_at" bson:"created_at" db:"created_at"`
}

// NewEntry returns an entry with a fresh ID and timestamp.
func NewEntry(operation, programID string) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		Operation: operation,
		ProgramID: programID,
		Status:    StatusSubmitted,
		CreatedAt: time.Now().UTC(),
	}
}

// Repository stores entries.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	// FindBySignature returns nil, nil when no entry matches.
	FindBySignature(ctx context.Context, signature string) (*Entry, error)
	// FindRecent returns up to limit entries, newest first.
	FindRecent(ctx context.Context, limit int) ([]*Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

// Factory opens a backend.
type Factory func(ctx context.Context, cfg *config.JournalConfig) (Repository, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		DriverNone: func(context.Context, *config.JournalConfig) (Repository, error) {
			return NopRepository{}, nil
		},
		DriverMemory: func(context.Context, *config.JournalConfig) (Repository, error) {
			return NewMemoryRepository(), nil
		},
	}
)

// RegisterFactory makes a driver available to Open.
func RegisterFactory(driver string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[driver] = factory
}

// Drivers lists the registered driver names.
func Drivers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open connects to the backend named by cfg.Driver and pings it.
func Open(ctx context.Context, cfg *config.JournalConfig) (Repository, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverNone
	}

	factoriesMu.RLock()
	factory, ok := factories[driver]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("journal driver %q not registered - import _ \"github.com/lugondev/go-amm/internal/journal/%s\"", driver, driver)
	}

	repo, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s journal: %w", driver, err)
	}
	if err := repo.Ping(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to ping %s journal: %w", driver, err)
	}
	return repo, nil
}

// NopRepository discards everything.
type NopRepository struct{}

func (NopRepository) Save(context.Context, *Entry) error { return nil }
func (NopRepository) FindBySignature(context.Context, string) (*Entry, error) {
	return nil, nil
}
func (NopRepository) FindRecent(context.Context, int) ([]*Entry, error) { return nil, nil }
func (NopRepository) Ping(context.Context) error                        { return nil }
func (NopRepository) Close() error                                      { return nil }
