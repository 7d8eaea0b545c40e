package mcp

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
)

// mockVoiceService records turns and returns a canned response.
type mockVoiceService struct {
	resp *domain.Response
	err  error

	lastCaller     domain.CallerContext
	lastTranscript string
	acked          int
	played         int
	state          domain.VoiceOSState
}

var _ driving.VoiceService = (*mockVoiceService)(nil)

func (m *mockVoiceService) Start(domain.CallerContext) error { return nil }

func (m *mockVoiceService) Submit(
	ctx context.Context, caller domain.CallerContext, transcript, convContext string,
) (*domain.Response, error) {
	return m.Turn(ctx, caller, transcript, convContext)
}

func (m *mockVoiceService) Turn(
	_ context.Context, caller domain.CallerContext, transcript, _ string,
) (*domain.Response, error) {
	m.lastCaller = caller
	m.lastTranscript = transcript
	return m.resp, m.err
}

func (m *mockVoiceService) Cancel(domain.CallerContext) {}

func (m *mockVoiceService) PlaybackComplete(domain.CallerContext) error {
	m.played++
	return nil
}

func (m *mockVoiceService) Acknowledge(domain.CallerContext) error {
	m.acked++
	return nil
}

func (m *mockVoiceService) State(caller domain.CallerContext) domain.VoiceOSState {
	m.lastCaller = caller
	return m.state
}

func (m *mockVoiceService) ResetStale() int { return 0 }

// mockKnowledgeService serves fixed search results and documents.
type mockKnowledgeService struct {
	results   []domain.SearchResult
	docs      map[string]*domain.KnowledgeDocument
	err       error
	lastLimit int
}

var _ driving.KnowledgeService = (*mockKnowledgeService)(nil)

func (m *mockKnowledgeService) Search(_ context.Context, _ string, limit int) ([]domain.SearchResult, error) {
	m.lastLimit = limit
	return m.results, m.err
}

func (m *mockKnowledgeService) SearchKeyword(ctx context.Context, q string, limit int) ([]domain.SearchResult, error) {
	return m.Search(ctx, q, limit)
}

func (m *mockKnowledgeService) SearchSimilarity(context.Context, []float32, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (m *mockKnowledgeService) Ingest(context.Context, *domain.KnowledgeDocument) error { return nil }

func (m *mockKnowledgeService) IngestBatch(context.Context, []*domain.KnowledgeDocument) error {
	return nil
}

func (m *mockKnowledgeService) Get(_ context.Context, id string) (*domain.KnowledgeDocument, error) {
	if doc, ok := m.docs[id]; ok {
		return doc, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockKnowledgeService) List(context.Context, string) ([]domain.KnowledgeDocument, error) {
	return nil, nil
}

func (m *mockKnowledgeService) Delete(context.Context, string) error { return nil }

func (m *mockKnowledgeService) Categories(context.Context) ([]string, error) { return nil, nil }

func (m *mockKnowledgeService) BackfillEmbeddings(context.Context) (int, error) { return 0, nil }

// mockDispatcher lists a fixed catalogue.
type mockDispatcher struct {
	infos []domain.ActionInfo
}

var _ driving.ActionDispatcher = (*mockDispatcher)(nil)

func (m *mockDispatcher) Dispatch(
	context.Context, domain.VoiceAction, domain.CallerContext,
) (domain.ActionResult, error) {
	return domain.Succeeded(nil), nil
}

func (m *mockDispatcher) Actions() []domain.ActionInfo { return m.infos }
