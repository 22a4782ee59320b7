package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassifyDocumentID tests document type and project code derivation
func TestClassifyDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantType DocumentType
		wantCode string
	}{
		{"abrd", "ABRD-HRMS-2025-1.0", TypeABRD, "HRMS"},
		{"fbrd", "FBRD-ORD-2025-1.0", TypeFBRD, "ORD"},
		{"unknown", "not-a-valid-id", TypeUnknown, ""},
		{"empty", "", TypeUnknown, ""},
		{"prefix only", "ABRD-", TypeABRD, ""},
		{"lowercase prefix", "abrd-hrms-2025-1.0", TypeUnknown, ""},
		{"no dash after prefix", "ABRDHRMS", TypeUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docType, code := ClassifyDocumentID(tt.id)
			assert.Equal(t, tt.wantType, docType)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

// TestDocumentMetadata_IsIndexable tests the status gate
func TestDocumentMetadata_IsIndexable(t *testing.T) {
	assert.True(t, DocumentMetadata{Status: "DRAFT"}.IsIndexable())
	assert.True(t, DocumentMetadata{Status: "Approved"}.IsIndexable())
	assert.True(t, DocumentMetadata{}.IsIndexable(), "missing status must not block indexing")
	assert.False(t, DocumentMetadata{Status: "Superseded"}.IsIndexable())
	assert.False(t, DocumentMetadata{Status: "ARCHIVED"}.IsIndexable())
}

// TestDocumentMetadata_IsZero tests empty-metadata detection
func TestDocumentMetadata_IsZero(t *testing.T) {
	assert.True(t, DocumentMetadata{DocumentType: TypeUnknown}.IsZero())
	assert.False(t, DocumentMetadata{Status: "DRAFT"}.IsZero())
	assert.False(t, DocumentMetadata{History: []HistoryEntry{{Version: "1.0"}}}.IsZero())
}
