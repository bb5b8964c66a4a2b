package analyses

import "context"

// Repo is the persistence gateway for analysis records. Records are created
// once and never updated or deleted.
type Repo interface {
	// Create stores rec and returns it with the store-assigned ID and stored
	// upload timestamp. Failures match ErrStoreWrite.
	Create(ctx context.Context, rec Record) (Record, error)
	// List returns every record, newest upload first. Failures match
	// ErrStoreRead; an empty store yields an empty slice.
	List(ctx context.Context) ([]Record, error)
	// GetByID returns a single record or ErrNotFound.
	GetByID(ctx context.Context, id string) (Record, error)
}
