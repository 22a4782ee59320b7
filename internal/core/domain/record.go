package domain

import "fmt"

// IndexRecord is one searchable unit submitted to the search index:
// either the whole document or a single section. Its ID is deterministic
// so re-indexing the same version-section pair overwrites rather than
// duplicates.
type IndexRecord struct {
	ID              string       `json:"id"`
	Content         string       `json:"content"`
	SourcePageID    string       `json:"source_page_id"`
	SourcePageTitle string       `json:"source_page_title"`
	SourceURL       string       `json:"source_url"`
	IsSection       bool         `json:"is_section"`
	SectionID       string       `json:"section_id"`
	SectionTitle    string       `json:"section_title"`
	SectionLevel    int          `json:"section_level"`
	SectionNumber   string       `json:"section_number"`
	DocumentType    DocumentType `json:"document_type"`
	ProjectCode     string       `json:"project_code"`
	DocumentID      string       `json:"document_id"`
	DocumentVersion string       `json:"document_version"`
	DocumentStatus  string       `json:"document_status"`
	CreatedDate     string       `json:"created_date"`
	LastUpdatedDate string       `json:"last_updated_date"`
	DocumentOwner   string       `json:"document_owner"`
	Summary         string       `json:"summary,omitempty"`
	RequirementIDs  []string     `json:"requirement_ids"`
	Vector          []float32    `json:"vector,omitempty"`
}

// RecordID builds the deterministic index record identity for a page
// version. sectionID is empty for the whole-document record.
func RecordID(sourceID string, version int, sectionID string) string {
	if sectionID == "" {
		return fmt.Sprintf("%s_v%d_full", sourceID, version)
	}
	return fmt.Sprintf("%s_v%d_%s", sourceID, version, sectionID)
}
