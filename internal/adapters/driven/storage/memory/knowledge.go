package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore is an in-memory implementation of driven.KnowledgeStore.
// Documents are kept in insertion order, which is the tiebreak for both
// search modes. Re-saving an existing ID keeps its original position.
type KnowledgeStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.KnowledgeDocument
	order     []string
}

// NewKnowledgeStore creates a new in-memory knowledge store.
func NewKnowledgeStore() *KnowledgeStore {
	return &KnowledgeStore{
		documents: make(map[string]*domain.KnowledgeDocument),
	}
}

// SaveDocument stores or replaces a document.
func (s *KnowledgeStore) SaveDocument(_ context.Context, doc *domain.KnowledgeDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.documents[doc.ID] = cloneDocument(doc)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *KnowledgeStore) GetDocument(_ context.Context, id string) (*domain.KnowledgeDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneDocument(doc), nil
}

// ListDocuments returns documents in insertion order, optionally filtered by category.
func (s *KnowledgeStore) ListDocuments(_ context.Context, category string) ([]domain.KnowledgeDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.KnowledgeDocument, 0, len(s.order))
	for _, id := range s.order {
		doc := s.documents[id]
		if category != "" && !strings.EqualFold(doc.Metadata.Category, category) {
			continue
		}
		docs = append(docs, *cloneDocument(doc))
	}
	return docs, nil
}

// DeleteDocument removes a document.
func (s *KnowledgeStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return nil
	}
	delete(s.documents, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SearchKeyword matches query case-insensitively against content and title.
// A blank query matches nothing.
func (s *KnowledgeStore) SearchKeyword(_ context.Context, query string, limit int) ([]domain.SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []domain.SearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.SearchResult, 0)
	for _, id := range s.order {
		if limit > 0 && len(results) >= limit {
			break
		}
		doc := s.documents[id]
		if strings.Contains(strings.ToLower(doc.Content), needle) ||
			strings.Contains(strings.ToLower(doc.Metadata.Title), needle) {
			results = append(results, domain.ResultFromDocument(doc, domain.KeywordMatchSimilarity, domain.SearchModeKeyword))
		}
	}
	return results, nil
}

// SearchSimilarity ranks embedded documents by cosine similarity to query.
func (s *KnowledgeStore) SearchSimilarity(_ context.Context, query []float32, limit int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	docs := make([]domain.KnowledgeDocument, 0, len(s.order))
	for _, id := range s.order {
		if doc := s.documents[id]; doc.HasEmbedding() {
			docs = append(docs, *doc)
		}
	}
	s.mu.RUnlock()

	return domain.RankBySimilarity(query, docs, limit), nil
}

func cloneDocument(doc *domain.KnowledgeDocument) *domain.KnowledgeDocument {
	c := *doc
	if doc.Embedding != nil {
		c.Embedding = append([]float32(nil), doc.Embedding...)
	}
	return &c
}
