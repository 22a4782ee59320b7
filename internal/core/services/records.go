package services

import (
	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
)

// BuildRecords turns an assembled document into its index records: one
// whole-document record followed by one record per section in pre-order
// document order.
func BuildRecords(doc *domain.Document) []domain.IndexRecord {
	page := doc.Page
	md := doc.Metadata

	base := domain.IndexRecord{
		SourcePageID:    page.SourceID,
		SourcePageTitle: page.Title,
		SourceURL:       page.URL,
		DocumentType:    md.DocumentType,
		ProjectCode:     md.ProjectCode,
		DocumentID:      md.DocumentID,
		DocumentVersion: md.VersionLabel,
		DocumentStatus:  md.Status,
		CreatedDate:     md.CreatedDate,
		LastUpdatedDate: md.UpdatedDate,
		DocumentOwner:   md.Author,
	}

	sections := doc.AllSections()
	records := make([]domain.IndexRecord, 0, 1+len(sections))

	full := base
	full.ID = domain.RecordID(page.SourceID, page.Version, "")
	full.Content = doc.FullContent
	full.RequirementIDs = doc.RequirementIDs()
	full.Summary = doc.Summary
	records = append(records, full)

	for _, s := range sections {
		rec := base
		rec.ID = domain.RecordID(page.SourceID, page.Version, s.ID)
		rec.Content = s.Content
		rec.IsSection = true
		rec.SectionID = s.ID
		rec.SectionTitle = s.Title
		rec.SectionLevel = s.Level
		rec.SectionNumber = s.Number
		rec.RequirementIDs = s.RequirementIDs
		records = append(records, rec)
	}
	return records
}
