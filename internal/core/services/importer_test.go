package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wevysya/voiceos/internal/adapters/driven/storage/memory"
	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
	"github.com/wevysya/voiceos/internal/normalisers"
	"github.com/wevysya/voiceos/internal/postprocessors/chunker"
)

// fakeFileSource serves fixed files and replays changes on Watch.
type fakeFileSource struct {
	files   []domain.SourceFile
	err     error
	changes []domain.SourceFile
}

func (s *fakeFileSource) Files(context.Context) ([]domain.SourceFile, error) {
	return s.files, s.err
}

func (s *fakeFileSource) Watch(_ context.Context, onChange func(domain.SourceFile)) error {
	for _, f := range s.changes {
		onChange(f)
	}
	return nil
}

func sourceFile(rel, content string) domain.SourceFile {
	return domain.SourceFile{
		Path:    "/kb/" + rel,
		RelPath: rel,
		Content: []byte(content),
		ModTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func newTestImporter(chunkSize int) (*Importer, *KnowledgeService) {
	knowledge := NewKnowledgeService(memory.NewKnowledgeStore(), nil)
	return NewImporter(knowledge, normalisers.Defaults(), chunker.New(chunker.WithChunkSize(chunkSize))), knowledge
}

func TestImporter_Import(t *testing.T) {
	imp, knowledge := newTestImporter(chunker.DefaultChunkSize)
	src := &fakeFileSource{files: []domain.SourceFile{
		sourceFile("dues.md", "# Annual Dues\n\nDues are paid every **April**."),
		sourceFile("events/calendar.html", "<title>Calendar</title><p>Chapter meets Fridays.</p>"),
		sourceFile("blank.txt", "   "),
		sourceFile("logo.txt", string([]byte{0xff, 0xfe})),
	}}

	report, err := imp.Import(context.Background(), src, driving.ImportOptions{Category: "membership"})

	require.NoError(t, err)
	assert.Equal(t, 4, report.Files)
	assert.Equal(t, 2, report.Documents)
	assert.Len(t, report.Skipped, 2)
	assert.Contains(t, report.Skipped, "blank.txt")
	assert.Contains(t, report.Skipped, "logo.txt")

	doc, err := knowledge.Get(context.Background(), "file:dues.md")
	require.NoError(t, err)
	assert.Equal(t, "Annual Dues", doc.Metadata.Title)
	assert.Equal(t, "membership", doc.Metadata.Category)
	assert.Equal(t, DefaultImportSource, doc.Metadata.Source)
	assert.Equal(t, "Annual Dues\n\nDues are paid every April.", doc.Content)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), doc.CreatedAt)

	results, err := knowledge.SearchKeyword(context.Background(), "fridays", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "file:events/calendar.html", results[0].ID)
}

func TestImporter_Import_DefaultsCategory(t *testing.T) {
	imp, knowledge := newTestImporter(chunker.DefaultChunkSize)
	src := &fakeFileSource{files: []domain.SourceFile{sourceFile("faq.txt", "Ask your chapter lead.")}}

	_, err := imp.Import(context.Background(), src, driving.ImportOptions{})
	require.NoError(t, err)

	doc, err := knowledge.Get(context.Background(), "file:faq.txt")
	require.NoError(t, err)
	assert.Equal(t, DefaultImportCategory, doc.Metadata.Category)
	assert.Equal(t, "faq", doc.Metadata.Title)
}

func TestImporter_Import_SourceError(t *testing.T) {
	imp, _ := newTestImporter(chunker.DefaultChunkSize)

	_, err := imp.Import(context.Background(), &fakeFileSource{err: domain.ErrInvalidInput}, driving.ImportOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImporter_Import_SplitsAndRemovesStaleParts(t *testing.T) {
	imp, knowledge := newTestImporter(100)
	para := strings.Repeat("referral ", 9) + "end."
	long := strings.Join([]string{para, para, para}, "\n\n")
	ctx := context.Background()

	report, err := imp.Import(ctx, &fakeFileSource{files: []domain.SourceFile{sourceFile("guide.txt", long)}}, driving.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Documents)

	docs, err := knowledge.List(ctx, "")
	require.NoError(t, err)
	ids := make([]string, 0, len(docs))
	for i := range docs {
		ids = append(ids, docs[i].ID)
	}
	assert.ElementsMatch(t, []string{"file:guide.txt#1", "file:guide.txt#2", "file:guide.txt#3"}, ids)

	report, err = imp.Import(ctx, &fakeFileSource{files: []domain.SourceFile{sourceFile("guide.txt", "Short now.")}}, driving.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 3, report.Removed)

	docs, err = knowledge.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "file:guide.txt", docs[0].ID)
}

func TestImporter_Import_KeepsUnrelatedDocuments(t *testing.T) {
	imp, knowledge := newTestImporter(chunker.DefaultChunkSize)
	ctx := context.Background()
	require.NoError(t, knowledge.Ingest(ctx, &domain.KnowledgeDocument{
		ID:       "seed-overview",
		Content:  "WeVysya overview.",
		Metadata: domain.DocumentMetadata{Title: "Overview", Category: "general", Source: "seed"},
	}))

	report, err := imp.Import(ctx, &fakeFileSource{files: []domain.SourceFile{sourceFile("a.md", "# A\nText")}}, driving.ImportOptions{})

	require.NoError(t, err)
	assert.Zero(t, report.Removed)
	_, err = knowledge.Get(ctx, "seed-overview")
	assert.NoError(t, err)
}

func TestImporter_Watch(t *testing.T) {
	imp, knowledge := newTestImporter(chunker.DefaultChunkSize)
	src := &fakeFileSource{changes: []domain.SourceFile{
		sourceFile("news.md", "# News\nNew chapter in Pune."),
		sourceFile("bad.txt", string([]byte{0xff})),
	}}

	type outcome struct {
		rel  string
		docs int
		err  error
	}
	var got []outcome
	err := imp.Watch(context.Background(), src, driving.ImportOptions{Category: "events"},
		func(f domain.SourceFile, n int, err error) {
			got = append(got, outcome{f.RelPath, n, err})
		})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, outcome{"news.md", 1, nil}, got[0])
	assert.Equal(t, "bad.txt", got[1].rel)
	assert.ErrorIs(t, got[1].err, domain.ErrInvalidInput)

	doc, err := knowledge.Get(context.Background(), "file:news.md")
	require.NoError(t, err)
	assert.Equal(t, "events", doc.Metadata.Category)
}

func TestBaseID(t *testing.T) {
	assert.Equal(t, "file:a.md", baseID("file:a.md#2"))
	assert.Equal(t, "file:a.md", baseID("file:a.md"))
	assert.Equal(t, "file:notes#draft.md", baseID("file:notes#draft.md"))
	assert.Equal(t, "file:x#", baseID("file:x#"))
}
