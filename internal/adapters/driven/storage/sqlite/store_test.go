package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wevysya/voiceos/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func knowledgeDoc(id, title, category, content string, embedding ...float32) *domain.KnowledgeDocument {
	return &domain.KnowledgeDocument{
		ID:        id,
		Content:   content,
		Embedding: embedding,
		Metadata:  domain.DocumentMetadata{Title: title, Category: category, Source: "test"},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "voiceos.db"), store.Path())
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.KnowledgeStore().SaveDocument(ctx, knowledgeDoc("a", "A", "general", "alpha")))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var versions int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 2, versions)

	doc, err := second.KnowledgeStore().GetDocument(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", doc.Content)
}

func TestKnowledgeStore_SaveAndGet(t *testing.T) {
	ks := setupTestStore(t).KnowledgeStore()
	ctx := context.Background()

	doc := knowledgeDoc("overview", "WeVysya Overview", "general", "WeVysya is a business network.", 0.5, -1, 2)
	require.NoError(t, ks.SaveDocument(ctx, doc))

	got, err := ks.GetDocument(ctx, "overview")
	require.NoError(t, err)
	assert.Equal(t, doc.Metadata, got.Metadata)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, []float32{0.5, -1, 2}, got.Embedding)
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))
}

func TestKnowledgeStore_GetMissing(t *testing.T) {
	ks := setupTestStore(t).KnowledgeStore()

	_, err := ks.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKnowledgeStore_SaveNil(t *testing.T) {
	ks := setupTestStore(t).KnowledgeStore()

	assert.ErrorIs(t, ks.SaveDocument(context.Background(), nil), domain.ErrInvalidInput)
}

func TestKnowledgeStore_OverwriteKeepsOrder(t *testing.T) {
	ks := setupTestStore(t).KnowledgeStore()
	ctx := context.Background()

	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("a", "A", "general", "first")))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("b", "B", "general", "second")))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("a", "A2", "general", "replaced", 1, 0)))

	docs, err := ks.ListDocuments(ctx, "")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "replaced", docs[0].Content)
	assert.True(t, docs[0].HasEmbedding())
	assert.Equal(t, "b", docs[1].ID)
	assert.False(t, docs[1].HasEmbedding())
}

func TestKnowledgeStore_ListByCategory(t *testing.T) {
	ks := setupTestStore(t).KnowledgeStore()
	ctx := context.Background()

	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("a", "A", "general", "x")))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("b", "B", "Membership", "y")))

	docs, err := ks.ListDocuments(ctx, "membership")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].ID)
}

func TestKnowledgeStore_Delete(t *testing.T) {
	ks := setupTestStore(t).KnowledgeStore()
	ctx := context.Background()

	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("a", "A", "general", "x")))
	require.NoError(t, ks.DeleteDocument(ctx, "a"))
	require.NoError(t, ks.DeleteDocument(ctx, "a"))

	_, err := ks.GetDocument(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKnowledgeStore_SearchKeyword(t *testing.T) {
	ks := setupTestStore(t).KnowledgeStore()
	ctx := context.Background()

	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("overview", "WeVysya Overview", "general", "A network of entrepreneurs.")))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("tiers", "Membership Tiers", "membership", "Inner circle members get calls.")))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("pct", "Fees", "membership", "A 100% refund, no_show fee.")))

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"title match is case-insensitive", "wevysya", 5, []string{"overview"}},
		{"content match", "INNER CIRCLE", 5, []string{"tiers"}},
		{"limit applies in store order", "a", 2, []string{"overview", "tiers"}},
		{"percent is literal", "100%", 5, []string{"pct"}},
		{"underscore is literal", "no_show", 5, []string{"pct"}},
		{"no match", "dragons", 5, nil},
		{"empty query", "  ", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := ks.SearchKeyword(ctx, tt.query, tt.limit)
			require.NoError(t, err)

			var ids []string
			for _, r := range results {
				ids = append(ids, r.ID)
				assert.Equal(t, domain.SearchModeKeyword, r.Mode)
				assert.Equal(t, domain.KeywordMatchSimilarity, r.Similarity)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestKnowledgeStore_SearchKeyword_NonASCII(t *testing.T) {
	ks := setupTestStore(t).KnowledgeStore()
	ctx := context.Background()

	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("ecole", "ÉCOLE Partners", "general", "Partner schools.")))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("sangha", "Chapters", "general", "Meetings at the ŚRĪ Hall.")))

	for query, want := range map[string]string{
		"école":    "ecole",
		"ÉCOLE":    "ecole",
		"śrī hall": "sangha",
	} {
		results, err := ks.SearchKeyword(ctx, query, 5)
		require.NoError(t, err)
		require.Len(t, results, 1, query)
		assert.Equal(t, want, results[0].ID)
	}
}

func TestNewStore_FoldsRowsWrittenBeforeFoldColumns(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.KnowledgeStore().SaveDocument(ctx, knowledgeDoc("ecole", "ÉCOLE Partners", "general", "Partner schools.")))
	_, err = first.db.Exec("UPDATE documents SET title_fold = NULL, content_fold = NULL")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	results, err := second.KnowledgeStore().SearchKeyword(ctx, "école", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ecole", results[0].ID)
}

func TestKnowledgeStore_SearchSimilarity(t *testing.T) {
	ks := setupTestStore(t).KnowledgeStore()
	ctx := context.Background()

	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("x", "X", "general", "x axis", 1, 0, 0)))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("xy", "XY", "general", "diagonal", 1, 1, 0)))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("y", "Y", "general", "y axis", 0, 1, 0)))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("plain", "P", "general", "no embedding")))
	require.NoError(t, ks.SaveDocument(ctx, knowledgeDoc("short", "S", "general", "other dimension", 1, 0)))

	results, err := ks.SearchSimilarity(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "x", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Equal(t, "xy", results[1].ID)
	assert.Equal(t, domain.SearchModeSimilarity, results[1].Mode)

	results, err = ks.SearchSimilarity(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestKnowledgeStore_ClosedStoreIsUnavailable(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ks := store.KnowledgeStore()
	require.NoError(t, store.Close())

	_, err = ks.SearchKeyword(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestRecordStore_PutGetList(t *testing.T) {
	rs := setupTestStore(t).RecordStore()
	ctx := context.Background()

	require.NoError(t, rs.Put(ctx, "referrals", "r1", map[string]any{"to": "Ramesh", "amount": 2500.0}))
	require.NoError(t, rs.Put(ctx, "referrals", "r2", map[string]any{"to": "Suresh"}))
	require.NoError(t, rs.Put(ctx, "drafts", "d1", map[string]any{"to": "Anita"}))
	require.NoError(t, rs.Put(ctx, "referrals", "r2", map[string]any{"to": "Suresh K"}))

	got, err := rs.Get(ctx, "referrals", "r1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"to": "Ramesh", "amount": 2500.0}, got)

	all, err := rs.List(ctx, "referrals")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Suresh K", all["r2"]["to"])

	_, err = rs.Get(ctx, "referrals", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_PutRequiresKeys(t *testing.T) {
	rs := setupTestStore(t).RecordStore()

	err := rs.Put(context.Background(), "", "id", map[string]any{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFloat32BlobRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
