package domain

// Document is the assembled parse result for one page. It is owned by
// the pipeline run that created it and never mutated after assembly,
// only replaced wholesale on re-run.
type Document struct {
	// Page is the source page this document was parsed from.
	Page RawPage

	// Metadata holds the Document Control fields.
	Metadata DocumentMetadata

	// Sections are the top-level sections in document order.
	Sections []*Section

	// FullContent is the flattened normalised text of the whole
	// document, with heading markers re-inserted.
	FullContent string

	// Fingerprint is the deterministic hash of FullContent, used to
	// detect content change independent of the upstream version.
	Fingerprint string

	// Summary is the optional AI-generated document summary.
	Summary string
}

// AllSections returns every section of the document in pre-order.
func (d *Document) AllSections() []*Section {
	return FlattenSections(d.Sections)
}

// RequirementIDs returns the union of every section's requirement IDs,
// duplicates removed, preserving first-seen document order.
func (d *Document) RequirementIDs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range d.AllSections() {
		for _, id := range s.RequirementIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
