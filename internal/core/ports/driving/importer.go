package driving

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// ImportOptions labels imported documents.
type ImportOptions struct {
	// Category is applied to every imported document.
	Category string

	// Source is recorded as each document's source.
	Source string
}

// KnowledgeImporter loads files into the knowledge store.
type KnowledgeImporter interface {
	// Import normalises and ingests every file from src.
	Import(ctx context.Context, src driven.FileSource, opts ImportOptions) (domain.ImportReport, error)

	// Watch re-imports files from src as they change until ctx is done.
	// onImport, if non-nil, is called after each file with its outcome.
	Watch(ctx context.Context, src driven.FileSource, opts ImportOptions,
		onImport func(file domain.SourceFile, documents int, err error)) error
}
