package domain

import "time"

// CacheEntry is the persisted change-detection state for one page.
// Created on first successful index, overwritten on each subsequent
// one, and removed only by an explicit cache clear.
type CacheEntry struct {
	// SourceID is the page identifier (cache key).
	SourceID string

	// LastVersion is the upstream version seen at the last index.
	LastVersion int

	// Fingerprint is the content fingerprint at the last index. It is
	// the secondary change signal for upstream versions that are
	// missing, stale, or non-monotonic.
	Fingerprint string

	// LastIndexedAt is when the page was last successfully indexed.
	LastIndexedAt time.Time
}
