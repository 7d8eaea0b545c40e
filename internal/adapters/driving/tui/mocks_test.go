package tui

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// MockVoiceService implements driving.VoiceService for testing.
type MockVoiceService struct {
	TurnFunc func(ctx context.Context, caller domain.CallerContext, transcript, convContext string) (*domain.Response, error)
	state    domain.VoiceOSState
	callers  []domain.CallerContext
}

func (m *MockVoiceService) Start(domain.CallerContext) error { return nil }

func (m *MockVoiceService) Submit(
	ctx context.Context, caller domain.CallerContext, transcript, convContext string,
) (*domain.Response, error) {
	return m.Turn(ctx, caller, transcript, convContext)
}

func (m *MockVoiceService) Turn(
	ctx context.Context, caller domain.CallerContext, transcript, convContext string,
) (*domain.Response, error) {
	m.callers = append(m.callers, caller)
	if m.TurnFunc != nil {
		return m.TurnFunc(ctx, caller, transcript, convContext)
	}
	m.state = domain.VoiceOSState{Status: domain.StatusSpeaking, TurnID: "t-1", Transcript: transcript}
	return &domain.Response{Kind: domain.ResponseAnswer, Text: "ok", Speech: "ok"}, nil
}

func (m *MockVoiceService) Cancel(domain.CallerContext) { m.state.Status = domain.StatusIdle }

func (m *MockVoiceService) PlaybackComplete(domain.CallerContext) error {
	m.state.Status = domain.StatusIdle
	return nil
}

func (m *MockVoiceService) Acknowledge(domain.CallerContext) error {
	m.state.Status = domain.StatusIdle
	return nil
}

func (m *MockVoiceService) State(domain.CallerContext) domain.VoiceOSState { return m.state }

func (m *MockVoiceService) ResetStale() int { return 0 }

// MockKnowledgeService implements driving.KnowledgeService for testing.
type MockKnowledgeService struct {
	categories []string
	err        error
}

func (m *MockKnowledgeService) Search(context.Context, string, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (m *MockKnowledgeService) SearchKeyword(context.Context, string, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (m *MockKnowledgeService) SearchSimilarity(context.Context, []float32, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (m *MockKnowledgeService) Ingest(context.Context, *domain.KnowledgeDocument) error { return nil }

func (m *MockKnowledgeService) IngestBatch(context.Context, []*domain.KnowledgeDocument) error { return nil }

func (m *MockKnowledgeService) Get(context.Context, string) (*domain.KnowledgeDocument, error) {
	return nil, domain.ErrNotFound
}

func (m *MockKnowledgeService) List(context.Context, string) ([]domain.KnowledgeDocument, error) {
	return nil, nil
}

func (m *MockKnowledgeService) Delete(context.Context, string) error { return nil }

func (m *MockKnowledgeService) Categories(context.Context) ([]string, error) {
	return m.categories, m.err
}

func (m *MockKnowledgeService) BackfillEmbeddings(context.Context) (int, error) { return 0, nil }

// MockDispatcher implements driving.ActionDispatcher for testing.
type MockDispatcher struct {
	actions []domain.ActionInfo
}

func (m *MockDispatcher) Dispatch(context.Context, domain.VoiceAction, domain.CallerContext) (domain.ActionResult, error) {
	return domain.Succeeded(nil), nil
}

func (m *MockDispatcher) Actions() []domain.ActionInfo { return m.actions }
