package journal

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps entries in process memory. Useful for tests and the
// long-running HTTP server.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
	byID    map[string]int
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]int)}
}

// Save inserts entry, replacing any entry with the same ID.
func (r *MemoryRepository) Save(ctx context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	if i, ok := r.byID[entry.ID]; ok {
		r.entries[i] = &cp
		return nil
	}
	r.byID[entry.ID] = len(r.entries)
	r.entries = append(r.entries, &cp)
	return nil
}

// FindBySignature returns the newest entry with signature.
func (r *MemoryRepository) FindBySignature(ctx context.Context, signature string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Signature == signature {
			cp := *r.entries[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// FindRecent returns up to limit entries, newest first.
func (r *MemoryRepository) FindRecent(ctx context.Context, limit int) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		cp := *r.entries[i]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored entries.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }
func (r *MemoryRepository) Close() error                   { return nil }
