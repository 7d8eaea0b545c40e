package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// knowledgeStore implements driven.KnowledgeStore.
type knowledgeStore struct {
	store *Store
}

var _ driven.KnowledgeStore = (*knowledgeStore)(nil)

const documentColumns = `id, title, category, source, content, embedding, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// SaveDocument stores or replaces a document by ID. A replaced document
// keeps its original rowid, and so its position in store order.
func (s *knowledgeStore) SaveDocument(ctx context.Context, doc *domain.KnowledgeDocument) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, category, source, content, embedding, created_at, title_fold, content_fold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			source = excluded.source,
			content = excluded.content,
			embedding = excluded.embedding,
			created_at = excluded.created_at,
			title_fold = excluded.title_fold,
			content_fold = excluded.content_fold
	`, doc.ID, doc.Metadata.Title, doc.Metadata.Category, doc.Metadata.Source, doc.Content,
		embeddingValue(doc.Embedding), createdAt.UTC().Format(time.RFC3339Nano),
		strings.ToLower(doc.Metadata.Title), strings.ToLower(doc.Content))

	return unavailable("saving document", err)
}

// GetDocument retrieves a document by ID.
func (s *knowledgeStore) GetDocument(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	doc, err := scanKnowledgeDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, unavailable("reading document", err)
	}
	return doc, nil
}

// ListDocuments returns documents in store order, optionally filtered by category.
func (s *knowledgeStore) ListDocuments(ctx context.Context, category string) ([]domain.KnowledgeDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if category != "" {
		query += ` WHERE category = ? COLLATE NOCASE`
		args = append(args, category)
	}
	query += ` ORDER BY rowid`

	return s.queryDocuments(ctx, "listing documents", query, args...)
}

// DeleteDocument removes a document.
func (s *knowledgeStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	return unavailable("deleting document", err)
}

// SearchKeyword returns documents whose content or title contains query.
// Matching runs on the folded columns with instr, which keeps % and _ in the
// query literal.
func (s *knowledgeStore) SearchKeyword(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" || limit <= 0 {
		return nil, nil
	}

	docs, err := s.queryDocuments(ctx, "keyword search", `
		SELECT `+documentColumns+` FROM documents
		WHERE instr(content_fold, ?) > 0 OR instr(title_fold, ?) > 0
		ORDER BY rowid
		LIMIT ?
	`, needle, needle, limit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(docs))
	for i := range docs {
		results = append(results, domain.ResultFromDocument(&docs[i], domain.KeywordMatchSimilarity, domain.SearchModeKeyword))
	}
	return results, nil
}

// SearchSimilarity ranks every embedded document against query.
func (s *knowledgeStore) SearchSimilarity(ctx context.Context, query []float32, limit int) ([]domain.SearchResult, error) {
	if len(query) == 0 || limit <= 0 {
		return nil, nil
	}

	docs, err := s.queryDocuments(ctx, "similarity search", `
		SELECT `+documentColumns+` FROM documents
		WHERE embedding IS NOT NULL AND length(embedding) = ?
		ORDER BY rowid
	`, len(query)*4)
	if err != nil {
		return nil, err
	}

	return domain.RankBySimilarity(query, docs, limit), nil
}

// foldExisting fills the folded columns of rows written before they existed.
func (s *knowledgeStore) foldExisting(ctx context.Context) error {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT id, title, content FROM documents WHERE title_fold IS NULL OR content_fold IS NULL`)
	if err != nil {
		return unavailable("folding documents", err)
	}
	type pending struct{ id, title, content string }
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.title, &p.content); err != nil {
			rows.Close()
			return unavailable("folding documents", err)
		}
		todo = append(todo, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return unavailable("folding documents", err)
	}
	if len(todo) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("folding documents", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, p := range todo {
		if _, err := tx.ExecContext(ctx, `UPDATE documents SET title_fold = ?, content_fold = ? WHERE id = ?`,
			strings.ToLower(p.title), strings.ToLower(p.content), p.id); err != nil {
			return unavailable("folding documents", err)
		}
	}
	return unavailable("folding documents", tx.Commit())
}

func (s *knowledgeStore) queryDocuments(
	ctx context.Context, op, query string, args ...any,
) ([]domain.KnowledgeDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	var docs []domain.KnowledgeDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanKnowledgeDocument(rows)
		if err != nil {
			return nil, unavailable(op, err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return docs, nil
}

// embeddingValue stores a missing embedding as NULL.
func embeddingValue(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}
	return float32SliceToBytes(embedding)
}

func scanKnowledgeDocument(row rowScanner) (*domain.KnowledgeDocument, error) {
	var doc domain.KnowledgeDocument
	var embedding []byte
	var createdAt string

	if err := row.Scan(&doc.ID, &doc.Metadata.Title, &doc.Metadata.Category, &doc.Metadata.Source,
		&doc.Content, &embedding, &createdAt); err != nil {
		return nil, err
	}

	doc.Embedding = bytesToFloat32Slice(embedding)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		doc.CreatedAt = t
	}
	return &doc, nil
}
