package driven

import (
	"context"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
)

// SearchIndex submits index records to the remote search service.
type SearchIndex interface {
	// Upsert adds or overwrites records in the index, returning one
	// result per submitted record in the same order. A transport-level
	// failure is returned as an error; per-record rejections appear in
	// the results with Succeeded false.
	Upsert(ctx context.Context, records []domain.IndexRecord) ([]UpsertResult, error)

	// Delete removes records by ID.
	Delete(ctx context.Context, ids []string) error

	// Close releases resources.
	Close() error
}

// UpsertResult reports the outcome for one submitted record.
type UpsertResult struct {
	// ID is the record identity.
	ID string

	// Succeeded reports whether the index accepted the record.
	Succeeded bool

	// Message holds the index's rejection reason, if any.
	Message string
}
