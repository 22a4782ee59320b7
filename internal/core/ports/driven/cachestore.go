package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
)

// FingerprintStore is the durable change-detection cache. One entry per
// page; created on first successful index, overwritten on each
// subsequent one.
type FingerprintStore interface {
	// Lookup returns the entry for a page, or domain.ErrNotFound.
	Lookup(ctx context.Context, sourceID string) (*domain.CacheEntry, error)

	// ShouldProcess decides whether a page needs re-indexing. It
	// returns false (skip) only when force is unset, an entry exists,
	// and both the upstream version and the content fingerprint are
	// unchanged. The fingerprint comparison is the safety net for
	// untrustworthy upstream version numbers; a version bump always
	// reprocesses because record identities embed the version.
	ShouldProcess(ctx context.Context, sourceID string, version int, fingerprint string, force bool) (bool, error)

	// Commit upserts the entry for a page in a single write. Safe to
	// call repeatedly for the same key.
	Commit(ctx context.Context, entry domain.CacheEntry) error

	// Clear drops all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Status summarises the cache for reporting.
	Status(ctx context.Context) (*CacheStatus, error)

	// Close releases the underlying store.
	Close() error
}

// CacheStatus summarises cache contents.
type CacheStatus struct {
	// Entries is the number of cached pages.
	Entries int

	// OldestIndexedAt and NewestIndexedAt bound the last-indexed
	// timestamps; zero when the cache is empty.
	OldestIndexedAt time.Time
	NewestIndexedAt time.Time

	// Path is the backing database location.
	Path string
}
