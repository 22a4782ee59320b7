package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
)

// Label patterns for Document Control keys. Order matters: the more
// specific approval patterns must win over the created/updated and
// owner patterns they overlap with.
var (
	reDocumentID   = regexp.MustCompile(`(?i)document\s*id`)
	reVersion      = regexp.MustCompile(`(?i)version`)
	reStatus       = regexp.MustCompile(`(?i)status`)
	reApprovedBy   = regexp.MustCompile(`(?i)approved\s*by`)
	reApprovalDate = regexp.MustCompile(`(?i)approval\s*date`)
	reCreated      = regexp.MustCompile(`(?i)created`)
	reUpdated      = regexp.MustCompile(`(?i)updated|modified`)
	reOwner        = regexp.MustCompile(`(?i)owner|author`)

	reControlLabel = regexp.MustCompile(`(?i)document\s*control`)
	reHistoryLabel = regexp.MustCompile(`(?i)document\s*history|revision\s*history|change\s*history`)
	reDate         = regexp.MustCompile(`(?i)date`)
	reDescription  = regexp.MustCompile(`(?i)description|change|summary`)
	reAuthorCol    = regexp.MustCompile(`(?i)owner|author|\bby\b`)
)

// ExtractMetadata locates the Document Control and Document History
// tables in the block sequence and parses them into metadata. When no
// control table exists it falls back to a key-labelled list at the top
// of the document; when neither exists it returns metadata with only
// DocumentType resolved (to UNKNOWN). Missing metadata is never an
// error.
//
// The returned block slice has the consumed tables removed so they do
// not leak into section content.
func ExtractMetadata(page domain.RawPage, blocks []Block) (domain.DocumentMetadata, []Block) {
	md := domain.DocumentMetadata{DocumentType: domain.TypeUnknown}

	controlIdx := findControlTable(blocks)
	if controlIdx >= 0 {
		parseControlRows(&md, blocks[controlIdx].Rows)
	} else {
		parseControlList(&md, blocks)
	}

	historyIdx := findHistoryTable(blocks, controlIdx)
	if historyIdx >= 0 {
		md.History = parseHistoryRows(blocks[historyIdx].Rows)
	}

	applyDefaults(&md, page)

	remaining := make([]Block, 0, len(blocks))
	for i, b := range blocks {
		if i == controlIdx || i == historyIdx {
			continue
		}
		remaining = append(remaining, b)
	}
	return md, remaining
}

// findControlTable returns the index of the Document Control table, or
// -1. A table qualifies if its first cell carries a control-style label
// or, failing that, if any cell mentions a document ID.
func findControlTable(blocks []Block) int {
	for i, b := range blocks {
		if b.Kind != BlockTable || len(b.Rows) == 0 || len(b.Rows[0]) == 0 {
			continue
		}
		if reControlLabel.MatchString(b.Rows[0][0]) {
			return i
		}
	}
	for i, b := range blocks {
		if b.Kind != BlockTable {
			continue
		}
		for _, row := range b.Rows {
			if len(row) > 0 && reDocumentID.MatchString(row[0]) {
				return i
			}
		}
	}
	return -1
}

// findHistoryTable returns the index of the Document History table, or
// -1. The control table itself is never considered.
func findHistoryTable(blocks []Block, controlIdx int) int {
	for i, b := range blocks {
		if i == controlIdx || b.Kind != BlockTable || len(b.Rows) == 0 {
			continue
		}
		header := strings.Join(b.Rows[0], " ")
		if reHistoryLabel.MatchString(header) {
			return i
		}
		if reVersion.MatchString(header) && reDate.MatchString(header) &&
			reDescription.MatchString(header) {
			return i
		}
	}
	return -1
}

// parseControlRows reads key/value rows from the control table.
func parseControlRows(md *domain.DocumentMetadata, rows [][]string) {
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		applyControlField(md, row[0], row[1])
	}
}

// parseControlList reads "Key: value" items from list blocks ahead of
// the first heading. This is the fallback for pages whose authors never
// built a control table.
func parseControlList(md *domain.DocumentMetadata, blocks []Block) {
	for _, b := range blocks {
		if b.Kind == BlockHeading {
			return
		}
		if b.Kind != BlockList {
			continue
		}
		for _, item := range b.Items {
			key, value, ok := strings.Cut(item, ":")
			if !ok {
				continue
			}
			applyControlField(md, strings.TrimSpace(key), strings.TrimSpace(value))
		}
	}
}

// applyControlField matches one key label and stores its value. First
// match wins; later rows never overwrite earlier ones.
func applyControlField(md *domain.DocumentMetadata, key, value string) {
	if value == "" {
		return
	}
	switch {
	case reDocumentID.MatchString(key):
		if md.DocumentID == "" {
			md.DocumentID = value
			md.DocumentType, md.ProjectCode = domain.ClassifyDocumentID(value)
		}
	case reApprovedBy.MatchString(key):
		if md.ApprovedBy == "" {
			md.ApprovedBy = value
		}
	case reApprovalDate.MatchString(key):
		if md.ApprovalDate == "" {
			md.ApprovalDate = value
		}
	case reVersion.MatchString(key):
		if md.VersionLabel == "" {
			md.VersionLabel = value
		}
	case reStatus.MatchString(key):
		if md.Status == "" {
			md.Status = value
		}
	case reCreated.MatchString(key):
		if md.CreatedDate == "" {
			md.CreatedDate = value
		}
	case reUpdated.MatchString(key):
		if md.UpdatedDate == "" {
			md.UpdatedDate = value
		}
	case reOwner.MatchString(key):
		if md.Author == "" {
			md.Author = value
		}
	}
}

// historyColumns maps header names to HistoryEntry fields by
// column-name matching, tolerating missing or reordered columns.
type historyColumns struct {
	version, date, description, author int
}

// parseHistoryRows reads the history table into ordered entries.
func parseHistoryRows(rows [][]string) []domain.HistoryEntry {
	if len(rows) < 2 {
		return nil
	}

	cols := historyColumns{version: -1, date: -1, description: -1, author: -1}
	for i, header := range rows[0] {
		switch {
		case reVersion.MatchString(header):
			cols.version = i
		case reDate.MatchString(header):
			cols.date = i
		// Author must be probed before description: a "Changed By"
		// header would otherwise match the change/description pattern.
		case reAuthorCol.MatchString(header):
			cols.author = i
		case reDescription.MatchString(header):
			cols.description = i
		}
	}

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	entries := make([]domain.HistoryEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entry := domain.HistoryEntry{
			Version:     cell(row, cols.version),
			Date:        cell(row, cols.date),
			Description: cell(row, cols.description),
			Author:      cell(row, cols.author),
		}
		if entry != (domain.HistoryEntry{}) {
			entries = append(entries, entry)
		}
	}
	return entries
}

// applyDefaults fills gaps from the history table and the upstream page
// record, mirroring what the wiki itself knows when authors left the
// control table incomplete. History rows are assumed oldest-first, as
// authors append to the bottom.
func applyDefaults(md *domain.DocumentMetadata, page domain.RawPage) {
	if md.DocumentID == "" {
		md.DocumentID = "DOC-" + page.SourceID
	}

	if n := len(md.History); n > 0 {
		latest := md.History[n-1]
		if md.VersionLabel == "" {
			md.VersionLabel = latest.Version
		}
		if md.Author == "" {
			md.Author = latest.Author
		}
		if md.UpdatedDate == "" {
			md.UpdatedDate = latest.Date
		}
		if md.CreatedDate == "" {
			md.CreatedDate = md.History[0].Date
		}
	}

	if md.VersionLabel == "" && page.Version > 0 {
		md.VersionLabel = strconv.Itoa(page.Version)
	}
}
