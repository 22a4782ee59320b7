package parser

import (
	"fmt"
	"strings"
)

// BlockKind identifies the type of a normalised content block.
type BlockKind int

const (
	// BlockHeading is an h1-h6 heading.
	BlockHeading BlockKind = iota

	// BlockParagraph is free text, including fragments the normaliser
	// could not classify.
	BlockParagraph

	// BlockTable is a table as rows of cell texts.
	BlockTable

	// BlockList is an ordered or unordered list.
	BlockList

	// BlockImage is an image reference.
	BlockImage
)

// Block is one node of the normalised block sequence. Exactly which
// fields are populated depends on Kind.
type Block struct {
	Kind BlockKind

	// Level is the heading level (1-6) for BlockHeading.
	Level int

	// Text is the heading, paragraph, or image reference text.
	Text string

	// Rows holds table cell texts, row-major, for BlockTable.
	Rows [][]string

	// Items holds list item texts for BlockList. Nested items are
	// indented by two spaces per level.
	Items []string

	// Ordered marks a numbered list.
	Ordered bool
}

// Render converts the block to its canonical text form.
func (b Block) Render() string {
	switch b.Kind {
	case BlockHeading:
		return b.Text
	case BlockParagraph:
		return b.Text
	case BlockTable:
		lines := make([]string, 0, len(b.Rows))
		for _, row := range b.Rows {
			lines = append(lines, strings.Join(row, " | "))
		}
		return strings.Join(lines, "\n")
	case BlockList:
		lines := make([]string, 0, len(b.Items))
		ordinal := 0
		for _, item := range b.Items {
			indent := ""
			trimmed := item
			for strings.HasPrefix(trimmed, "  ") {
				indent += "  "
				trimmed = trimmed[2:]
			}
			if b.Ordered && indent == "" {
				ordinal++
				lines = append(lines, fmt.Sprintf("%d. %s", ordinal, trimmed))
			} else {
				lines = append(lines, indent+"- "+trimmed)
			}
		}
		return strings.Join(lines, "\n")
	case BlockImage:
		return "[image: " + b.Text + "]"
	default:
		return b.Text
	}
}

// RenderBlocks joins the canonical text of all blocks, skipping empty
// ones, with blank lines between blocks.
func RenderBlocks(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if text := b.Render(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
