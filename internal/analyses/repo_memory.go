package analyses

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo stores records in memory and is safe for concurrent use. Records
// are copied on the way in and out, so callers cannot change stored data.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]Record
	order []string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]Record),
	}
}

// Create assigns a fresh ID and stores the record.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, &StoreError{Op: opCreate, Err: err}
	}
	rec = rec.Clone().Normalize()
	rec.ID = uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	return rec.Clone(), nil
}

// List returns records newest first; ties keep insertion order reversed.
func (r *MemoryRepo) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StoreError{Op: opList, Err: err}
	}

	r.mu.RLock()
	out := make([]Record, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.byID[r.order[i]].Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadDate.After(out[j].UploadDate)
	})
	return out, nil
}

// GetByID returns a record by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, &StoreError{Op: opGet, Err: err}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.Clone(), nil
}

var _ Repo = (*MemoryRepo)(nil)
