package driven

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// Normaliser converts a source file into knowledge document text.
type Normaliser interface {
	// SupportedExtensions returns lower-case file extensions including the dot.
	SupportedExtensions() []string

	// Normalise extracts a title and plain-text content from raw.
	// The returned document has no ID, category or source set.
	Normalise(ctx context.Context, path string, raw []byte) (*domain.KnowledgeDocument, error)
}
