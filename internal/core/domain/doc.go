// Package domain defines the core business entities for the BRD ingester.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawPage: A page fetched from the wiki, before parsing
//   - DocumentMetadata: Fields recovered from the Document Control table
//   - Section: One node of the heading-derived section tree
//   - Document: The assembled, immutable parse result for one page
//   - IndexRecord: One searchable unit submitted to the search index
//   - CacheEntry: Persisted change-detection state for one page
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
