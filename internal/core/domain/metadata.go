package domain

import "strings"

// DocumentType classifies a business requirements document by the prefix
// of its document ID.
type DocumentType string

const (
	// TypeABRD is an Application Business Requirements Document.
	TypeABRD DocumentType = "ABRD"

	// TypeFBRD is a Feature Business Requirements Document.
	TypeFBRD DocumentType = "FBRD"

	// TypeUnknown is any document whose ID matches no known prefix.
	TypeUnknown DocumentType = "UNKNOWN"
)

// HistoryEntry is one row of the Document History table.
type HistoryEntry struct {
	Version     string
	Date        string
	Description string
	Author      string
}

// DocumentMetadata holds the fields recovered from the Document Control
// table (or its list-form fallback). Every field except DocumentType may
// be empty; a page with no recognisable metadata still indexes at
// reduced fidelity.
type DocumentMetadata struct {
	DocumentID   string
	DocumentType DocumentType
	ProjectCode  string
	VersionLabel string
	Status       string
	Author       string
	CreatedDate  string
	UpdatedDate  string
	ApprovedBy   string
	ApprovalDate string

	// History holds Document History rows in table order.
	History []HistoryEntry
}

// ClassifyDocumentID derives the document type and project code from a
// dash-delimited document ID such as "ABRD-HRMS-2025-1.0". Malformed IDs
// yield TypeUnknown and an empty project code; they never fail.
func ClassifyDocumentID(documentID string) (DocumentType, string) {
	var docType DocumentType
	switch {
	case strings.HasPrefix(documentID, string(TypeABRD)+"-"):
		docType = TypeABRD
	case strings.HasPrefix(documentID, string(TypeFBRD)+"-"):
		docType = TypeFBRD
	default:
		return TypeUnknown, ""
	}

	// Project code is the token immediately after the type prefix.
	rest := documentID[len(docType)+1:]
	code, _, _ := strings.Cut(rest, "-")
	return docType, code
}

// IsIndexable reports whether a page with the given status should be
// indexed. Pages that are neither drafts nor approved are skipped;
// pages with no status at all are still indexed.
func (m DocumentMetadata) IsIndexable() bool {
	if m.Status == "" {
		return true
	}
	switch strings.ToUpper(m.Status) {
	case "DRAFT", "APPROVED":
		return true
	default:
		return false
	}
}

// IsZero reports whether no metadata field was recovered.
func (m DocumentMetadata) IsZero() bool {
	return m.DocumentID == "" && m.VersionLabel == "" && m.Status == "" &&
		m.Author == "" && m.CreatedDate == "" && m.UpdatedDate == "" &&
		m.ApprovedBy == "" && m.ApprovalDate == "" && len(m.History) == 0
}
