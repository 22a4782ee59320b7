package driven

// ConfiguredPage is one page registered for ingestion.
type ConfiguredPage struct {
	// ID is the upstream page identifier.
	ID string

	// Name is a human-readable label.
	Name string

	// Enabled marks the page for processing in run mode.
	Enabled bool
}

// ConfiguredSpace is one space registered for ingestion.
type ConfiguredSpace struct {
	// Key is the upstream space key.
	Key string

	// Name is a human-readable label.
	Name string

	// Enabled marks the space for processing in run mode.
	Enabled bool
}

// PageConfigStore persists which pages and spaces the run command
// processes.
type PageConfigStore interface {
	// Pages returns all configured pages.
	Pages() []ConfiguredPage

	// Spaces returns all configured spaces.
	Spaces() []ConfiguredSpace

	// AddPage registers a page. Returns domain.ErrAlreadyExists when
	// the ID is already configured.
	AddPage(id, name string) error

	// RemovePage unregisters a page. Returns domain.ErrNotFound for
	// unknown IDs.
	RemovePage(id string) error

	// SetPageEnabled toggles whether run mode processes a page.
	// Returns domain.ErrNotFound for unknown IDs.
	SetPageEnabled(id string, enabled bool) error
}
