package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// collapseText reduces all whitespace runs to single spaces and trims.
func collapseText(text string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// Normalise converts raw storage-format markup into an ordered block
// sequence. Malformed markup degrades to a best-effort sequence;
// fragments that cannot be classified are kept as paragraph text so no
// content is silently dropped. Only structurally empty input fails,
// with domain.ErrEmptyContent.
func Normalise(raw string) ([]Block, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.ErrEmptyContent
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		// The tokenizer accepts almost anything; if it still refuses,
		// keep the input as opaque text rather than dropping the page.
		return []Block{{Kind: BlockParagraph, Text: collapseText(raw)}}, nil
	}

	var blocks []Block
	for _, node := range doc.Find("body").Nodes {
		walkNode(node, &blocks)
	}

	if len(blocks) == 0 {
		text := collapseText(doc.Text())
		if text == "" {
			return nil, domain.ErrEmptyContent
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: text})
	}
	return blocks, nil
}

// walkNode recursively converts an HTML node into blocks, preserving
// document order.
func walkNode(n *html.Node, blocks *[]Block) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			// Loose text outside any recognised element is retained.
			if text := collapseText(child.Data); text != "" {
				*blocks = append(*blocks, Block{Kind: BlockParagraph, Text: text})
			}
		case html.ElementNode:
			convertElement(child, blocks)
		}
	}
}

// convertElement maps one element to a block, or recurses into
// containers.
func convertElement(n *html.Node, blocks *[]Block) {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if text := collapseText(nodeText(n)); text != "" {
			*blocks = append(*blocks, Block{
				Kind:  BlockHeading,
				Level: int(n.Data[1] - '0'),
				Text:  text,
			})
		}
	case "p", "pre", "blockquote":
		if text := collapseText(nodeText(n)); text != "" {
			*blocks = append(*blocks, Block{Kind: BlockParagraph, Text: text})
		}
	case "table":
		if rows := parseTable(n); len(rows) > 0 {
			*blocks = append(*blocks, Block{Kind: BlockTable, Rows: rows})
		}
	case "ul", "ol":
		items := parseList(n, 0)
		if len(items) > 0 {
			*blocks = append(*blocks, Block{
				Kind:    BlockList,
				Items:   items,
				Ordered: n.Data == "ol",
			})
		}
	case "img":
		if ref := attrValue(n, "src"); ref != "" {
			*blocks = append(*blocks, Block{Kind: BlockImage, Text: ref})
		}
	case "ac:image":
		// Confluence storage format wraps attachments in ac:image.
		if ref := findAttachmentRef(n); ref != "" {
			*blocks = append(*blocks, Block{Kind: BlockImage, Text: ref})
		}
	case "script", "style", "noscript", "head", "svg":
		// Non-content elements.
	default:
		// Unknown or container element: recurse so nested content
		// (div/section/span wrappers, macro bodies) is not lost.
		walkNode(n, blocks)
	}
}

// nodeText returns the concatenated text of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

// parseTable extracts cell texts row-major from a table element,
// walking thead/tbody wrappers.
func parseTable(n *html.Node) [][]string {
	var rows [][]string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "tr":
				var cells []string
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						cells = append(cells, collapseText(nodeText(cell)))
					}
				}
				if len(cells) > 0 {
					rows = append(rows, cells)
				}
			case "thead", "tbody", "tfoot":
				visit(c)
			}
		}
	}
	visit(n)
	return rows
}

// parseList extracts item texts from a ul/ol element. Nested lists are
// flattened with two spaces of indentation per level.
func parseList(n *html.Node, depth int) []string {
	var items []string
	indent := strings.Repeat("  ", depth)
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var own strings.Builder
		var nested []string
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, parseList(c, depth+1)...)
				continue
			}
			own.WriteString(nodeText(c))
			own.WriteString(" ")
		}
		if text := collapseText(own.String()); text != "" {
			items = append(items, indent+text)
		}
		items = append(items, nested...)
	}
	return items
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// findAttachmentRef digs the ri:filename out of an ac:image subtree.
func findAttachmentRef(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if ref := attrValue(c, "ri:filename"); ref != "" {
			return ref
		}
		if ref := findAttachmentRef(c); ref != "" {
			return ref
		}
	}
	return ""
}
