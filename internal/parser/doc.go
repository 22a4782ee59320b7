// Package parser implements the content-parsing core of the ingester.
//
// It turns raw storage-format markup into domain objects in four steps:
//
//   - Normalise: markup -> ordered sequence of typed blocks
//   - ExtractMetadata: locate and parse the Document Control and
//     Document History tables (or their list fallback)
//   - SplitSections: build the heading-derived section tree
//   - Assemble: combine everything into an immutable Document with a
//     content fingerprint
//
// All steps are pure transforms. Hand-authored input is expected to be
// messy; every step degrades to partial output rather than failing,
// except for structurally empty input.
package parser
