package driven

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// KnowledgeStore persists knowledge documents and searches them.
// Backed by SQLite for local use or in-memory maps for tests.
//
// Both search methods return at most limit results. A store that cannot
// reach its backend returns an error wrapping domain.ErrStoreUnavailable.
type KnowledgeStore interface {
	// SaveDocument stores or replaces a document by ID.
	SaveDocument(ctx context.Context, doc *domain.KnowledgeDocument) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if absent.
	GetDocument(ctx context.Context, id string) (*domain.KnowledgeDocument, error)

	// ListDocuments returns all documents, optionally filtered by category.
	// An empty category returns every document.
	ListDocuments(ctx context.Context, category string) ([]domain.KnowledgeDocument, error)

	// DeleteDocument removes a document. Deleting a missing document is not an error.
	DeleteDocument(ctx context.Context, id string) error

	// SearchKeyword returns documents whose content or title contains query,
	// case-insensitively, in store order.
	SearchKeyword(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// SearchSimilarity returns embedded documents ranked by cosine similarity
	// to query, highest first. Documents without an embedding, or with an
	// embedding of a different dimension, are excluded.
	SearchSimilarity(ctx context.Context, query []float32, limit int) ([]domain.SearchResult, error)
}
