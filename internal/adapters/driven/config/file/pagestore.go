package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driven"
)

// Ensure PageStore implements the interface.
var _ driven.PageConfigStore = (*PageStore)(nil)

// PageStore is a TOML-backed implementation of driven.PageConfigStore.
// The registry is persisted on every mutation.
type PageStore struct {
	mu       sync.RWMutex
	filePath string
	doc      pageDocument
}

// pageDocument is the on-disk TOML layout.
type pageDocument struct {
	Pages  []pageEntry  `toml:"pages"`
	Spaces []spaceEntry `toml:"spaces"`
}

type pageEntry struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Enabled bool   `toml:"enabled"`
}

type spaceEntry struct {
	Key     string `toml:"key"`
	Name    string `toml:"name"`
	Enabled bool   `toml:"enabled"`
}

// NewPageStore creates a TOML-based page registry.
// If configDir is empty, defaults to ~/.brdingest/pages.toml.
func NewPageStore(configDir string) (*PageStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".brdingest")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &PageStore{
		filePath: filepath.Join(configDir, "pages.toml"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Pages returns all configured pages.
func (s *PageStore) Pages() []driven.ConfiguredPage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pages := make([]driven.ConfiguredPage, len(s.doc.Pages))
	for i, p := range s.doc.Pages {
		pages[i] = driven.ConfiguredPage{ID: p.ID, Name: p.Name, Enabled: p.Enabled}
	}
	return pages
}

// Spaces returns all configured spaces.
func (s *PageStore) Spaces() []driven.ConfiguredSpace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spaces := make([]driven.ConfiguredSpace, len(s.doc.Spaces))
	for i, sp := range s.doc.Spaces {
		spaces[i] = driven.ConfiguredSpace{Key: sp.Key, Name: sp.Name, Enabled: sp.Enabled}
	}
	return spaces
}

// AddPage registers a page, enabled, and persists the registry.
func (s *PageStore) AddPage(id, name string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.doc.Pages {
		if p.ID == id {
			return fmt.Errorf("page %s: %w", id, domain.ErrAlreadyExists)
		}
	}

	s.doc.Pages = append(s.doc.Pages, pageEntry{ID: id, Name: name, Enabled: true})
	return s.save()
}

// RemovePage unregisters a page and persists the registry.
func (s *PageStore) RemovePage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.doc.Pages {
		if p.ID == id {
			s.doc.Pages = append(s.doc.Pages[:i], s.doc.Pages[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
}

// SetPageEnabled toggles a page and persists the registry.
func (s *PageStore) SetPageEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Pages {
		if s.doc.Pages[i].ID == id {
			s.doc.Pages[i].Enabled = enabled
			return s.save()
		}
	}
	return fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
}

// Path returns the registry file path.
func (s *PageStore) Path() string {
	return s.filePath
}

// load reads the registry from disk; a missing file starts empty.
func (s *PageStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading page registry: %w", err)
	}

	if err := toml.Unmarshal(data, &s.doc); err != nil {
		return fmt.Errorf("parsing page registry: %w", err)
	}
	return nil
}

// save writes the registry to disk (caller must hold lock).
func (s *PageStore) save() error {
	data, err := toml.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("encoding page registry: %w", err)
	}

	// Write with restricted permissions
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing page registry: %w", err)
	}
	return nil
}
