package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wevysya/voiceos/internal/adapters/driven/storage/memory"
	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
)

// --- Mock implementations shared by service tests ---

// classifierReply is one scripted answer from mockClassificationService.
type classifierReply struct {
	raw string
	err error
}

// mockClassificationService replays scripted replies in order; the last
// reply repeats once the script is exhausted. With hang set it never replies
// and waits for the context instead.
type mockClassificationService struct {
	mu       sync.Mutex
	replies  []classifierReply
	calls    int
	requests []driven.ClassificationRequest
	hang     bool
}

func newMockClassificationService(replies ...classifierReply) *mockClassificationService {
	return &mockClassificationService{replies: replies}
}

func (m *mockClassificationService) Classify(ctx context.Context, req driven.ClassificationRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.calls++
	hang := m.hang
	m.mu.Unlock()

	if hang {
		<-ctx.Done()
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	i := m.calls - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	return m.replies[i].raw, m.replies[i].err
}

func (m *mockClassificationService) Name() string { return "mock" }
func (m *mockClassificationService) Ping(_ context.Context) error { return nil }
func (m *mockClassificationService) Close() error { return nil }

func (m *mockClassificationService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockIntentClassifier returns a fixed intent, optionally blocking until released.
type mockIntentClassifier struct {
	mu      sync.Mutex
	intent  *domain.Intent
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (m *mockIntentClassifier) Classify(ctx context.Context, _, _ string) (*domain.Intent, error) {
	m.mu.Lock()
	m.calls++
	started, release := m.started, m.release
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	intent := *m.intent
	return &intent, nil
}

func (m *mockIntentClassifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockEmbedder derives a vector from the text via a lookup table.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	err      error
	batchErr error
	calls    int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return 3 }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error { return nil }

// flakyKnowledgeStore wraps the memory store and fails the first N searches.
type flakyKnowledgeStore struct {
	*memory.KnowledgeStore

	mu              sync.Mutex
	keywordFails    int
	similarityFails int
	keywordCalls    int
	similarityCalls int
	err             error
	hang            bool
}

func newFlakyKnowledgeStore() *flakyKnowledgeStore {
	return &flakyKnowledgeStore{
		KnowledgeStore: memory.NewKnowledgeStore(),
		err:            errors.New("connection refused"),
	}
}

func (f *flakyKnowledgeStore) SearchKeyword(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	f.mu.Lock()
	f.keywordCalls++
	fail := f.keywordFails > 0
	if fail {
		f.keywordFails--
	}
	hang := f.hang
	f.mu.Unlock()
	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if fail {
		return nil, f.err
	}
	return f.KnowledgeStore.SearchKeyword(ctx, query, limit)
}

func (f *flakyKnowledgeStore) SearchSimilarity(ctx context.Context, query []float32, limit int) ([]domain.SearchResult, error) {
	f.mu.Lock()
	f.similarityCalls++
	fail := f.similarityFails > 0
	if fail {
		f.similarityFails--
	}
	hang := f.hang
	f.mu.Unlock()
	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if fail {
		return nil, f.err
	}
	return f.KnowledgeStore.SearchSimilarity(ctx, query, limit)
}

// recordingHandler counts invocations and returns a fixed outcome.
type recordingHandler struct {
	mu     sync.Mutex
	calls  int
	params []map[string]any
	result domain.ActionResult
	err    error
	panics bool
	block  time.Duration

	entered  chan struct{}
	finished int
}

func (h *recordingHandler) Handle(ctx context.Context, params map[string]any, _ domain.CallerContext) (domain.ActionResult, error) {
	h.mu.Lock()
	h.calls++
	h.params = append(h.params, params)
	h.mu.Unlock()

	if h.entered != nil {
		h.entered <- struct{}{}
	}
	if h.panics {
		panic("handler exploded")
	}
	if h.block > 0 {
		select {
		case <-time.After(h.block):
		case <-ctx.Done():
			return domain.ActionResult{}, ctx.Err()
		}
	}

	h.mu.Lock()
	h.finished++
	h.mu.Unlock()
	return h.result, h.err
}

func (h *recordingHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// telemetryRecorder captures telemetry events.
type telemetryRecorder struct {
	mu         sync.Mutex
	turns      []domain.ResponseKind
	intents    []string
	dispatches []string
	searches   []domain.SearchMode
}

func (r *telemetryRecorder) TurnCompleted(kind domain.ResponseKind, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, kind)
}

func (r *telemetryRecorder) IntentClassified(t domain.IntentType, errKind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, string(t)+":"+errKind)
}

func (r *telemetryRecorder) ActionDispatched(action string, _ bool, errKind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatches = append(r.dispatches, action+":"+errKind)
}

func (r *telemetryRecorder) SearchPerformed(mode domain.SearchMode, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, mode)
}

// mockVoiceService counts stale resets for scheduler tests.
type mockVoiceService struct {
	mu     sync.Mutex
	resets int
	stale  int
}

func (m *mockVoiceService) Start(domain.CallerContext) error { return nil }
func (m *mockVoiceService) Submit(context.Context, domain.CallerContext, string, string) (*domain.Response, error) {
	return &domain.Response{}, nil
}
func (m *mockVoiceService) Turn(context.Context, domain.CallerContext, string, string) (*domain.Response, error) {
	return &domain.Response{}, nil
}
func (m *mockVoiceService) Cancel(domain.CallerContext) {}
func (m *mockVoiceService) PlaybackComplete(domain.CallerContext) error { return nil }
func (m *mockVoiceService) Acknowledge(domain.CallerContext) error { return nil }
func (m *mockVoiceService) State(domain.CallerContext) domain.VoiceOSState { return domain.VoiceOSState{} }
func (m *mockVoiceService) ResetStale() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	return m.stale
}

// mockAIValidator records which configs were validated.
type mockAIValidator struct {
	embeddingErr  error
	classifierErr error
	embedding     *domain.EmbeddingSettings
	classifier    *domain.ClassifierSettings
}

func (m *mockAIValidator) ValidateEmbedding(s *domain.EmbeddingSettings) error {
	m.embedding = s
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateClassifier(s *domain.ClassifierSettings) error {
	m.classifier = s
	return m.classifierErr
}

// Ensure mocks implement interfaces.
var (
	_ driven.ClassificationService = (*mockClassificationService)(nil)
	_ driving.IntentClassifier     = (*mockIntentClassifier)(nil)
	_ driven.EmbeddingService      = (*mockEmbedder)(nil)
	_ driven.KnowledgeStore        = (*flakyKnowledgeStore)(nil)
	_ driven.ActionHandler         = (*recordingHandler)(nil)
	_ driven.Telemetry             = (*telemetryRecorder)(nil)
	_ driving.VoiceService         = (*mockVoiceService)(nil)
	_ driven.AIConfigValidator     = (*mockAIValidator)(nil)
)
