package domain

import (
	"fmt"
	"strings"
	"time"
)

// KnowledgeDocument is a reference document used to answer informational questions.
// Documents are created by ingestion and are read-only thereafter; re-ingesting
// with the same ID overwrites the document wholesale.
type KnowledgeDocument struct {
	// ID is the unique identifier for the document. Immutable once created.
	ID string

	// Content is the plain-text body.
	Content string

	// Embedding is the vector representation for similarity search.
	// Nil until an embedding pass has run; such documents are keyword-only.
	Embedding []float32

	// Metadata describes the document.
	Metadata DocumentMetadata

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// DocumentMetadata holds the required descriptive fields of a document.
type DocumentMetadata struct {
	// Title is the human-readable title, also matched by keyword search.
	Title string `json:"title"`

	// Category names the knowledge domain (e.g. "general", "membership").
	Category string `json:"category"`

	// Source records where the content came from.
	Source string `json:"source"`
}

// HasEmbedding returns true if the document is eligible for similarity search.
func (d *KnowledgeDocument) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// Validate checks the document carries content and complete metadata.
func (d *KnowledgeDocument) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: document content is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.Metadata.Title) == "" {
		return fmt.Errorf("%w: document title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.Metadata.Category) == "" {
		return fmt.Errorf("%w: document category is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.Metadata.Source) == "" {
		return fmt.Errorf("%w: document source is required", ErrInvalidInput)
	}
	return nil
}
