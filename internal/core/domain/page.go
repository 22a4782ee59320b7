package domain

// RawPage represents a wiki page as fetched from the content source.
// It is the pipeline's input and is never mutated.
type RawPage struct {
	// SourceID is the upstream page identifier.
	SourceID string

	// Title is the page title as reported by the source.
	Title string

	// Version is the upstream version number. Upstream versions are not
	// guaranteed monotonic; the content fingerprint is the authoritative
	// change signal.
	Version int

	// Body is the raw storage-format markup (HTML/XHTML).
	Body string

	// URL is the human-facing page location.
	URL string
}
