package driving

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// KnowledgeService provides knowledge search and ingestion to external actors.
type KnowledgeService interface {
	// Search answers a free-text query, using similarity search when an
	// embedding service is configured and falling back to keyword search.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// SearchKeyword performs case-insensitive substring search.
	SearchKeyword(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// SearchSimilarity ranks embedded documents by cosine similarity to embedding.
	SearchSimilarity(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error)

	// Ingest validates, embeds (when possible) and stores a document.
	// An empty ID is replaced with a generated one.
	Ingest(ctx context.Context, doc *domain.KnowledgeDocument) error

	// IngestBatch ingests documents concurrently. It stops at the first failure.
	IngestBatch(ctx context.Context, docs []*domain.KnowledgeDocument) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.KnowledgeDocument, error)

	// List returns documents, optionally filtered by category.
	List(ctx context.Context, category string) ([]domain.KnowledgeDocument, error)

	// Delete removes a document.
	Delete(ctx context.Context, id string) error

	// Categories returns the distinct document categories, sorted.
	Categories(ctx context.Context) ([]string, error)

	// BackfillEmbeddings embeds documents that have no embedding.
	// Returns the number of documents updated.
	BackfillEmbeddings(ctx context.Context) (int, error)
}
