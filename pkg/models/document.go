// Package models defines the core data types shared across the indexing
// and search subsystems.
package models

// DocumentType identifies the storage format of a document descriptor.
type DocumentType string

const (
	DocumentTypePlainText DocumentType = "plain_text"
	DocumentTypeMarkdown  DocumentType = "markdown"
	DocumentTypePDF       DocumentType = "pdf"
	DocumentTypeImage     DocumentType = "image"
	DocumentTypeOther     DocumentType = "other"
)

// DocumentDescriptor is the immutable external input to a build. It is
// supplied by the document-store collaborator and outlives the build.
type DocumentDescriptor struct {
	ID   string
	Path string
	Type DocumentType
	Name string
}

// PageText is produced by the extraction step of the index builder.
// PageNumber is present for PDF pages and absent (nil) for whole-file text.
type PageText struct {
	PageNumber       *int
	Text             string
	EstimatedTokens  int
}

// SectionText is a sentinel-delimited region of a document and the unit of
// chunker input. PageStart and PageEnd are nil when the section spans
// page-less text (plain text / markdown).
type SectionText struct {
	Text      string
	PageStart *int
	PageEnd   *int
}
