package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
)

// ParsePage runs the full parsing chain for one page: normalise the
// markup, pull out the control and history tables, split the remaining
// blocks into sections, and assemble the document.
func ParsePage(page domain.RawPage) (*domain.Document, error) {
	blocks, err := Normalise(page.Body)
	if err != nil {
		return nil, err
	}
	md, rest := ExtractMetadata(page, blocks)
	sections := SplitSections(rest)
	return Assemble(page, md, sections)
}

// Assemble combines a page, its metadata, and its section tree into an
// immutable Document. FullContent is rebuilt from the tree in document
// order with heading markers re-inserted, and the content fingerprint
// is computed over it. Assembly fails only when nothing indexable was
// produced at all.
func Assemble(page domain.RawPage, md domain.DocumentMetadata, sections []*domain.Section) (*domain.Document, error) {
	full := renderFullContent(sections)

	if len(sections) == 0 && full == "" && md.IsZero() {
		return nil, domain.ErrEmptyDocument
	}

	return &domain.Document{
		Page:        page,
		Metadata:    md,
		Sections:    sections,
		FullContent: full,
		Fingerprint: Fingerprint(page.Title, full),
	}, nil
}

// renderFullContent flattens the tree in pre-order, re-inserting a
// markdown-style heading marker ahead of each section's content.
func renderFullContent(sections []*domain.Section) string {
	var parts []string
	for _, root := range sections {
		root.Walk(func(s *domain.Section) bool {
			marker := strings.Repeat("#", s.Level) + " "
			if s.Number != "" {
				marker += s.Number + " "
			}
			parts = append(parts, marker+s.Title)
			if s.Content != "" {
				parts = append(parts, s.Content)
			}
			return true
		})
	}
	return strings.Join(parts, "\n\n")
}

// Fingerprint computes the deterministic content hash for change
// detection: sha256 over the title and body with a NUL separator,
// hex-encoded.
func Fingerprint(title, content string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
