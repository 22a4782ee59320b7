package domain

// Section is one node of the heading-derived section tree.
//
// Invariants: every child's Level is strictly greater than its parent's,
// tree order matches source document order, and IDs are unique within a
// document.
type Section struct {
	// ID is a stable identifier derived from the heading numbering when
	// present (e.g. "section_2_1"), otherwise from document position.
	ID string

	// Title is the heading text without its numbering prefix.
	Title string

	// Level is the 1-based nesting depth of this section.
	Level int

	// Number is the dotted numbering string ("2.1"), empty for
	// unnumbered headings.
	Number string

	// Content is the normalised text of this section only, excluding
	// child sections.
	Content string

	// Children are nested subsections in document order.
	Children []*Section

	// RequirementIDs are the requirement identifiers found in this
	// section's own content, first-seen order, no duplicates. Child
	// sections' identifiers are not inherited.
	RequirementIDs []string
}

// Walk visits the section and its descendants in pre-order document
// order. Returning false from fn stops the walk.
func (s *Section) Walk(fn func(*Section) bool) bool {
	if !fn(s) {
		return false
	}
	for _, child := range s.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// FlattenSections returns all sections of the given trees in pre-order.
func FlattenSections(roots []*Section) []*Section {
	var out []*Section
	for _, root := range roots {
		root.Walk(func(s *Section) bool {
			out = append(out, s)
			return true
		})
	}
	return out
}
