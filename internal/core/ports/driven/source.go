package driven

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// FileSource supplies files for knowledge import.
type FileSource interface {
	// Files returns every importable file.
	Files(ctx context.Context) ([]domain.SourceFile, error)

	// Watch calls onChange for each importable file created or modified,
	// blocking until ctx is done.
	Watch(ctx context.Context, onChange func(domain.SourceFile)) error
}

// DocumentSplitter divides a long document into independently searchable parts.
type DocumentSplitter interface {
	// Split returns doc itself when it needs no splitting.
	Split(doc *domain.KnowledgeDocument) []*domain.KnowledgeDocument
}
