package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
	"github.com/wevysya/voiceos/internal/logger"
)

// Ensure Importer implements the interface.
var _ driving.KnowledgeImporter = (*Importer)(nil)

// Import defaults.
const (
	DefaultImportCategory = "general"
	DefaultImportSource   = "import"
)

// Importer turns source files into knowledge documents.
type Importer struct {
	knowledge  driving.KnowledgeService
	normaliser driven.Normaliser
	splitter   driven.DocumentSplitter
}

// NewImporter creates an importer. The splitter is optional (can be nil);
// without it each file becomes exactly one document.
func NewImporter(
	knowledge driving.KnowledgeService,
	normaliser driven.Normaliser,
	splitter driven.DocumentSplitter,
) *Importer {
	return &Importer{
		knowledge:  knowledge,
		normaliser: normaliser,
		splitter:   splitter,
	}
}

// Import reads every file from src and ingests the resulting documents in
// one batch. Files that fail to normalise are reported, not fatal.
func (i *Importer) Import(ctx context.Context, src driven.FileSource, opts driving.ImportOptions) (domain.ImportReport, error) {
	logger.Section("Knowledge Import")
	opts = withImportDefaults(opts)
	report := domain.ImportReport{Skipped: make(map[string]string)}

	files, err := src.Files(ctx)
	if err != nil {
		return report, err
	}
	report.Files = len(files)

	var docs []*domain.KnowledgeDocument
	for _, f := range files {
		parts, err := i.documents(ctx, f, opts)
		if err != nil {
			logger.Warn("Skipping %s: %v", f.RelPath, err)
			report.Skipped[f.RelPath] = err.Error()
			continue
		}
		docs = append(docs, parts...)
	}
	if len(docs) == 0 {
		return report, nil
	}

	if err := i.knowledge.IngestBatch(ctx, docs); err != nil {
		return report, fmt.Errorf("ingesting %d documents: %w", len(docs), err)
	}
	report.Documents = len(docs)

	removed, err := i.removeStale(ctx, docs)
	if err != nil {
		return report, err
	}
	report.Removed = removed

	logger.Info("Imported %d files as %d documents (%d skipped)", report.Files-len(report.Skipped), len(docs), len(report.Skipped))
	return report, nil
}

// Watch imports each changed file as it arrives.
func (i *Importer) Watch(
	ctx context.Context,
	src driven.FileSource,
	opts driving.ImportOptions,
	onImport func(file domain.SourceFile, documents int, err error),
) error {
	opts = withImportDefaults(opts)
	return src.Watch(ctx, func(f domain.SourceFile) {
		n, err := i.importFile(ctx, f, opts)
		if err != nil {
			logger.Warn("Re-import of %s failed: %v", f.RelPath, err)
		}
		if onImport != nil {
			onImport(f, n, err)
		}
	})
}

func (i *Importer) importFile(ctx context.Context, f domain.SourceFile, opts driving.ImportOptions) (int, error) {
	docs, err := i.documents(ctx, f, opts)
	if err != nil {
		return 0, err
	}
	if err := i.knowledge.IngestBatch(ctx, docs); err != nil {
		return 0, err
	}
	if _, err := i.removeStale(ctx, docs); err != nil {
		return len(docs), err
	}
	return len(docs), nil
}

// documents normalises f and splits the result into labelled parts.
func (i *Importer) documents(ctx context.Context, f domain.SourceFile, opts driving.ImportOptions) ([]*domain.KnowledgeDocument, error) {
	doc, err := i.normaliser.Normalise(ctx, f.Path, f.Content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("%w: no readable text", domain.ErrInvalidInput)
	}

	doc.ID = f.DocumentID()
	doc.CreatedAt = f.ModTime
	doc.Metadata.Category = opts.Category
	doc.Metadata.Source = opts.Source
	if strings.TrimSpace(doc.Metadata.Title) == "" {
		doc.Metadata.Title = f.RelPath
	}

	if i.splitter == nil {
		return []*domain.KnowledgeDocument{doc}, nil
	}
	return i.splitter.Split(doc), nil
}

// removeStale deletes documents left over from an earlier import of the same
// files: the whole document when a file is now split, or parts beyond the
// new count when it shrank.
func (i *Importer) removeStale(ctx context.Context, written []*domain.KnowledgeDocument) (int, error) {
	keep := make(map[string]bool, len(written))
	bases := make(map[string]bool)
	for _, d := range written {
		keep[d.ID] = true
		bases[baseID(d.ID)] = true
	}

	existing, err := i.knowledge.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("listing documents: %w", err)
	}

	removed := 0
	for idx := range existing {
		id := existing[idx].ID
		if keep[id] || !bases[baseID(id)] {
			continue
		}
		if err := i.knowledge.Delete(ctx, id); err != nil {
			return removed, fmt.Errorf("removing stale document %s: %w", id, err)
		}
		removed++
	}
	return removed, nil
}

// baseID strips a "#n" part suffix.
func baseID(id string) string {
	i := strings.LastIndexByte(id, '#')
	if i <= 0 || i == len(id)-1 {
		return id
	}
	for _, r := range id[i+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return id[:i]
}

func withImportDefaults(opts driving.ImportOptions) driving.ImportOptions {
	if strings.TrimSpace(opts.Category) == "" {
		opts.Category = DefaultImportCategory
	}
	if strings.TrimSpace(opts.Source) == "" {
		opts.Source = DefaultImportSource
	}
	return opts
}
