package journal

import (
	"context"
	"fmt"
	"slices"
)

// SchemaStep is one versioned change to a SQL journal schema. Statements run
// in order; drivers that cannot execute several statements at once get them
// one by one.
type SchemaStep struct {
	Version     int
	Description string
	Statements  []string
}

// SchemaStore is what Migrate needs from a SQL backend.
type SchemaStore interface {
	// EnsureVersionTable creates the bookkeeping table if it is missing.
	EnsureVersionTable(ctx context.Context) error
	// CurrentVersion returns the highest recorded version, 0 when none.
	CurrentVersion(ctx context.Context) (int, error)
	// Apply runs step and records its version.
	Apply(ctx context.Context, step SchemaStep) error
}

// Migrate applies the steps above the store's current version in ascending
// order and returns how many ran. Versions must be positive and unique.
func Migrate(ctx context.Context, store SchemaStore, steps []SchemaStep) (int, error) {
	ordered := slices.Clone(steps)
	slices.SortFunc(ordered, func(a, b SchemaStep) int { return a.Version - b.Version })
	for i, step := range ordered {
		if step.Version <= 0 {
			return 0, fmt.Errorf("schema step %q has non-positive version %d", step.Description, step.Version)
		}
		if i > 0 && ordered[i-1].Version == step.Version {
			return 0, fmt.Errorf("duplicate schema version %d", step.Version)
		}
	}

	if err := store.EnsureVersionTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to create schema version table: %w", err)
	}
	current, err := store.CurrentVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	applied := 0
	for _, step := range ordered {
		if step.Version <= current {
			continue
		}
		if err := store.Apply(ctx, step); err != nil {
			return applied, fmt.Errorf("failed to apply schema version %d (%s): %w", step.Version, step.Description, err)
		}
		applied++
	}
	return applied, nil
}
