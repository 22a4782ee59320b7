package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
)

// reHeadingNumber splits "2.1.3 Feature Background" into the dotted
// numbering and the bare title. A trailing dot or parenthesis after the
// number is tolerated ("1. Scope", "1) Scope").
var reHeadingNumber = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]?\s+(.+)$`)

// SplitSections partitions the block sequence into a section tree.
//
// A heading's nesting level comes from its dotted numbering (dot count
// plus one) when that agrees with the structural heading depth within
// one level; otherwise structure is authoritative, which keeps
// inconsistently hand-numbered documents from producing broken trees.
// Content before the first heading becomes a synthetic "Preamble"
// section when non-empty. Requirement IDs are extracted per section
// from its own content only.
func SplitSections(blocks []Block) []*domain.Section {
	var roots []*domain.Section
	var stack []*domain.Section
	used := make(map[string]bool)

	attach := func(s *domain.Section) {
		for len(stack) > 0 && stack[len(stack)-1].Level >= s.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, s)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, s)
		}
		stack = append(stack, s)
	}

	var pending []Block
	var current *domain.Section
	ordinal := 0

	flush := func() {
		content := RenderBlocks(pending)
		pending = pending[:0]
		if current != nil {
			current.Content = content
			current.RequirementIDs = ExtractRequirementIDs(content)
			return
		}
		if content == "" {
			return
		}
		// Unheaded introductory content.
		preamble := &domain.Section{
			ID:             sectionID("", 0, used),
			Title:          "Preamble",
			Level:          1,
			Content:        content,
			RequirementIDs: ExtractRequirementIDs(content),
		}
		roots = append(roots, preamble)
		stack = append(stack, preamble)
	}

	for _, b := range blocks {
		if b.Kind != BlockHeading {
			pending = append(pending, b)
			continue
		}
		flush()

		number, title := splitHeadingNumber(b.Text)
		ordinal++
		current = &domain.Section{
			ID:     sectionID(number, ordinal, used),
			Title:  title,
			Number: number,
			Level:  effectiveLevel(number, b.Level),
		}
		attach(current)
	}
	flush()

	return roots
}

// splitHeadingNumber separates an optional dotted numbering prefix from
// the heading title.
func splitHeadingNumber(text string) (number, title string) {
	if m := reHeadingNumber.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}
	return "", text
}

// effectiveLevel resolves the nesting level of a heading. Numbering
// wins only when it stays within one level of the structural depth.
func effectiveLevel(number string, structural int) int {
	if number == "" {
		return structural
	}
	numbered := strings.Count(number, ".") + 1
	if diff := numbered - structural; diff > 1 || diff < -1 {
		return structural
	}
	return numbered
}

// sectionID derives a stable, unique section identifier: the slugged
// numbering when present ("section_2_1"), the document ordinal
// otherwise, and "section_preamble" for the synthetic preamble.
func sectionID(number string, ordinal int, used map[string]bool) string {
	var id string
	switch {
	case number != "":
		id = "section_" + strings.ReplaceAll(number, ".", "_")
	case ordinal == 0:
		id = "section_preamble"
	default:
		id = fmt.Sprintf("section_%d", ordinal)
	}

	if used[id] {
		base := id
		for n := 2; used[id]; n++ {
			id = fmt.Sprintf("%s_%d", base, n)
		}
	}
	used[id] = true
	return id
}
