package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
	"github.com/wevysya/voiceos/internal/logger"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// defaultIngestWorkers bounds concurrent embedding calls during batch ingestion.
const defaultIngestWorkers = 4

// KnowledgeService searches and maintains the knowledge store.
type KnowledgeService struct {
	store     driven.KnowledgeStore
	embedder  driven.EmbeddingService
	telemetry driven.Telemetry

	retries int
	timeout time.Duration
	workers int
}

// NewKnowledgeService creates a new knowledge service.
// The embedder parameter is optional (can be nil); without it search is keyword-only.
func NewKnowledgeService(store driven.KnowledgeStore, embedder driven.EmbeddingService) *KnowledgeService {
	p := domain.DefaultPipelineSettings()
	return &KnowledgeService{
		store:     store,
		embedder:  embedder,
		telemetry: driven.NopTelemetry{},
		retries:   p.Retries,
		timeout:   p.SearchTimeout,
		workers:   defaultIngestWorkers,
	}
}

// SetTelemetry sets the telemetry sink.
func (s *KnowledgeService) SetTelemetry(t driven.Telemetry) {
	if t == nil {
		t = driven.NopTelemetry{}
	}
	s.telemetry = t
}

// SetPolicy applies the retry count and search timeout from pipeline settings.
func (s *KnowledgeService) SetPolicy(p domain.PipelineSettings) {
	if p.Retries >= 0 {
		s.retries = p.Retries
	}
	if p.SearchTimeout > 0 {
		s.timeout = p.SearchTimeout
	}
}

// Search answers a free-text query. Similarity search is tried first when an
// embedder is configured; an unavailable store, a failed embedding or an empty
// similarity result falls back to keyword search.
func (s *KnowledgeService) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	logger.Section("Knowledge Search")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	limit = normaliseLimit(limit)

	if s.embedder != nil {
		results, err := s.similarForText(ctx, query, limit)
		switch {
		case err == nil && len(results) > 0:
			s.telemetry.SearchPerformed(domain.SearchModeSimilarity, len(results))
			return results, nil
		case err == nil:
			logger.Debug("No similarity hits, falling back to keyword search")
		case ctx.Err() != nil:
			return nil, contextError(ctx.Err())
		default:
			logger.Warn("Similarity search failed, falling back to keyword search: %v", err)
		}
	}

	results, err := s.SearchKeyword(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		results, err = s.searchTerms(ctx, query, limit)
		if err != nil {
			return nil, err
		}
	}
	s.telemetry.SearchPerformed(domain.SearchModeKeyword, len(results))
	return results, nil
}

// searchTerms runs keyword search for each significant term of a spoken
// question, merging hits in term order until limit is reached.
func (s *KnowledgeService) searchTerms(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	terms := keywordTerms(query)
	logger.Debug("Whole-query keyword search empty, trying terms %v", terms)

	seen := make(map[string]bool)
	results := []domain.SearchResult{}
	for _, term := range terms {
		hits, err := s.SearchKeyword(ctx, term, limit)
		if err != nil {
			return nil, err
		}
		for _, h := range hits {
			if seen[h.ID] {
				continue
			}
			seen[h.ID] = true
			results = append(results, h)
			if len(results) == limit {
				return results, nil
			}
		}
	}
	return results, nil
}

// similarForText embeds query and runs a similarity search.
func (s *KnowledgeService) similarForText(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vec, err := s.embedder.Embed(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	return s.SearchSimilarity(ctx, vec, limit)
}

// SearchKeyword performs case-insensitive substring search over content and title.
func (s *KnowledgeService) SearchKeyword(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	limit = normaliseLimit(limit)

	var results []domain.SearchResult
	err := s.withRetry(ctx, "keyword search", func(ctx context.Context) error {
		var err error
		results, err = s.store.SearchKeyword(ctx, query, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	logger.Debug("Keyword hits: %d", len(results))
	return results, nil
}

// SearchSimilarity ranks embedded documents by cosine similarity.
func (s *KnowledgeService) SearchSimilarity(
	ctx context.Context, embedding []float32, limit int,
) ([]domain.SearchResult, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrInvalidInput)
	}
	limit = normaliseLimit(limit)

	var results []domain.SearchResult
	err := s.withRetry(ctx, "similarity search", func(ctx context.Context) error {
		var err error
		results, err = s.store.SearchSimilarity(ctx, embedding, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	logger.Debug("Similarity hits: %d", len(results))
	return results, nil
}

// withRetry runs op under the search timeout, retrying store unavailability.
// Any other store error is reported as unavailability.
func (s *KnowledgeService) withRetry(ctx context.Context, name string, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err = op(opCtx)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return contextError(ctx.Err())
		}
		err = storeError(err)
		logger.Warn("%s attempt %d failed: %v", name, attempt+1, err)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// contextError reports an expired caller deadline as store unavailability.
// Cancellation is passed through unchanged.
func contextError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

// storeError maps backend failures onto the store taxonomy.
func storeError(err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

// Ingest validates, embeds and stores a document.
// An embedding failure is not fatal; the document is stored keyword-only
// and picked up by the next embedding backfill.
func (s *KnowledgeService) Ingest(ctx context.Context, doc *domain.KnowledgeDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	if s.embedder != nil && !doc.HasEmbedding() {
		vec, err := s.embedder.Embed(ctx, embeddingText(doc))
		if err != nil {
			logger.Warn("Embedding %s failed, storing keyword-only: %v", doc.ID, err)
		} else {
			doc.Embedding = vec
		}
	}

	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, storeError(err))
	}
	logger.Debug("Ingested %s (%s, embedded=%t)", doc.ID, doc.Metadata.Title, doc.HasEmbedding())
	return nil
}

// IngestBatch ingests documents with bounded concurrency.
func (s *KnowledgeService) IngestBatch(ctx context.Context, docs []*domain.KnowledgeDocument) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, doc := range docs {
		g.Go(func() error {
			return s.Ingest(gctx, doc)
		})
	}
	return g.Wait()
}

// Get retrieves a document by ID.
func (s *KnowledgeService) Get(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, storeError(err)
	}
	return doc, nil
}

// List returns documents, optionally filtered by category.
func (s *KnowledgeService) List(ctx context.Context, category string) ([]domain.KnowledgeDocument, error) {
	docs, err := s.store.ListDocuments(ctx, category)
	if err != nil {
		return nil, storeError(err)
	}
	return docs, nil
}

// Delete removes a document.
func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return storeError(err)
	}
	return nil
}

// Categories returns the distinct document categories, sorted.
func (s *KnowledgeService) Categories(ctx context.Context) ([]string, error) {
	docs, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var categories []string
	for i := range docs {
		c := docs[i].Metadata.Category
		if c != "" && !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// BackfillEmbeddings embeds documents that were stored without an embedding.
func (s *KnowledgeService) BackfillEmbeddings(ctx context.Context) (int, error) {
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	docs, err := s.List(ctx, "")
	if err != nil {
		return 0, err
	}

	var pending []*domain.KnowledgeDocument
	var texts []string
	for i := range docs {
		if !docs[i].HasEmbedding() {
			pending = append(pending, &docs[i])
			texts = append(texts, embeddingText(&docs[i]))
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}
	logger.Info("Backfilling embeddings for %d documents", len(pending))

	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vecs) != len(pending) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d documents",
			domain.ErrEmbeddingUnavailable, len(vecs), len(pending))
	}

	updated := 0
	for i, doc := range pending {
		doc.Embedding = vecs[i]
		if err := s.store.SaveDocument(ctx, doc); err != nil {
			return updated, fmt.Errorf("save document %s: %w", doc.ID, storeError(err))
		}
		updated++
	}
	return updated, nil
}

// embeddingText is the text embedded for a document.
func embeddingText(doc *domain.KnowledgeDocument) string {
	return doc.Metadata.Title + "\n" + doc.Content
}

func normaliseLimit(limit int) int {
	if limit <= 0 {
		return domain.DefaultSearchLimit
	}
	return limit
}

// stopWords are question words skipped when splitting a query into terms.
var stopWords = map[string]bool{
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"whom": true, "whose": true, "why": true, "how": true, "does": true,
	"the": true, "and": true, "for": true, "are": true, "is": true,
	"about": true, "tell": true, "with": true, "this": true, "that": true,
	"can": true, "you": true, "your": true, "have": true, "there": true,
}

// keywordTerms splits query into lower-case terms of three or more letters,
// longest first, without stop words.
func keywordTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool)
	var terms []string
	for _, f := range fields {
		if len(f) < 3 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i]) > len(terms[j])
	})
	return terms
}
