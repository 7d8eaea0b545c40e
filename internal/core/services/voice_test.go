package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wevysya/voiceos/internal/adapters/driven/storage/memory"
	"github.com/wevysya/voiceos/internal/core/domain"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// voiceFixture wires a voice service over real knowledge and dispatch services.
type voiceFixture struct {
	voice      *VoiceService
	classifier *mockIntentClassifier
	handler    *recordingHandler
	clock      *fakeClock
	telemetry  *telemetryRecorder
}

func newVoiceFixture(t *testing.T, intent *domain.Intent) *voiceFixture {
	t.Helper()

	knowledge := NewKnowledgeService(memory.NewKnowledgeStore(), nil)
	seedOverview(t, knowledge)

	handler := &recordingHandler{result: domain.Navigated("/call", map[string]any{"member": "Ramesh"})}
	registry := newRegistryWith(t, callMemberDefinition(handler))

	f := &voiceFixture{
		classifier: &mockIntentClassifier{intent: intent},
		handler:    handler,
		clock:      newFakeClock(),
		telemetry:  &telemetryRecorder{},
	}
	f.voice = NewVoiceService(f.classifier, knowledge, registry, NewSynthesizer())
	f.voice.SetTelemetry(f.telemetry)
	f.voice.p.now = f.clock.now
	return f
}

func TestVoiceService_KnowledgeTurn(t *testing.T) {
	f := newVoiceFixture(t, knowledgeIntent("WeVysya is a business network."))

	resp, err := f.voice.Turn(context.Background(), innerCircle, "What is WeVysya?", "WeVysya is a business network...")

	require.NoError(t, err)
	assert.Equal(t, domain.ResponseAnswer, resp.Kind)
	assert.Contains(t, resp.Text, "From WeVysya Overview:")
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "WeVysya Overview", resp.Results[0].Metadata.Title)
	assert.Zero(t, f.handler.callCount(), "knowledge turns never dispatch")

	want := domain.VoiceOSState{
		Status:     domain.StatusSpeaking,
		Transcript: "What is WeVysya?",
		Response:   resp.Text,
		Intent:     resp.Intent,
		Confidence: 0.9,
	}
	if diff := cmp.Diff(want, f.voice.State(innerCircle), cmpopts.IgnoreFields(domain.VoiceOSState{}, "TurnID", "UpdatedAt")); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, f.voice.PlaybackComplete(innerCircle))
	assert.Equal(t, domain.StatusIdle, f.voice.State(innerCircle).Status)
	assert.Empty(t, f.voice.State(innerCircle).Response)
}

func TestVoiceService_ActionTurn(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.85))

	resp, err := f.voice.Turn(context.Background(), innerCircle, "Call Ramesh", "")

	require.NoError(t, err)
	assert.Equal(t, domain.ResponseAction, resp.Kind)
	assert.True(t, resp.Navigation)
	assert.Equal(t, "/call", resp.Screen)
	require.NotNil(t, resp.ActionResult)
	assert.True(t, resp.ActionResult.Success)
	assert.Equal(t, 1, f.handler.callCount())
	assert.Equal(t, domain.StatusSpeaking, f.voice.State(innerCircle).Status)
}

func TestVoiceService_LowConfidenceAsksForClarification(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.3))

	resp, err := f.voice.Turn(context.Background(), innerCircle, "Call Ramesh maybe", "")

	require.NoError(t, err)
	assert.Equal(t, domain.ResponseClarification, resp.Kind)
	assert.Zero(t, f.handler.callCount(), "low-confidence intents never dispatch")
	assert.Equal(t, domain.StatusSpeaking, f.voice.State(innerCircle).Status)
}

func TestVoiceService_ThresholdFromPolicy(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.6))
	p := domain.DefaultPipelineSettings()
	p.ConfidenceThreshold = 0.7
	f.voice.SetPolicy(p)

	resp, err := f.voice.Turn(context.Background(), innerCircle, "Call Ramesh", "")

	require.NoError(t, err)
	assert.Equal(t, domain.ResponseClarification, resp.Kind)
	assert.Zero(t, f.handler.callCount())
}

func TestVoiceService_ContractViolationsEndInError(t *testing.T) {
	tests := []struct {
		name   string
		intent *domain.Intent
		caller domain.CallerContext
		err    error
		kind   domain.ResponseKind
	}{
		{
			name: "unknown action",
			intent: &domain.Intent{Type: domain.IntentAction, Confidence: 0.9,
				Action: &domain.VoiceAction{Name: "delete_account"}},
			caller: innerCircle,
			err:    domain.ErrUnknownAction,
			kind:   domain.ResponseApology,
		},
		{
			name: "missing parameter",
			intent: &domain.Intent{Type: domain.IntentAction, Confidence: 0.9,
				Action: &domain.VoiceAction{Name: "call_member"}},
			caller: innerCircle,
			err:    domain.ErrInvalidParameters,
			kind:   domain.ResponseApology,
		},
		{
			name:   "permission denied",
			intent: callIntent(0.9),
			caller: domain.CallerContext{UserID: "u-9", Authenticated: true, Tier: domain.TierMember},
			err:    domain.ErrPermissionDenied,
			kind:   domain.ResponseAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVoiceFixture(t, tt.intent)

			resp, err := f.voice.Turn(context.Background(), tt.caller, "do it", "")

			assert.ErrorIs(t, err, tt.err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.Zero(t, f.handler.callCount())
			assert.Equal(t, domain.StatusError, f.voice.State(tt.caller).Status)
		})
	}
}

func TestVoiceService_HandlerFailureIsSpokenApology(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.9))
	f.handler.result = domain.ActionResult{}
	f.handler.err = fmt.Errorf("dialler offline")

	resp, err := f.voice.Turn(context.Background(), innerCircle, "Call Ramesh", "")

	require.NoError(t, err)
	assert.Equal(t, domain.ResponseApology, resp.Kind)
	assert.Contains(t, resp.Text, "dialler offline")
	assert.Equal(t, domain.StatusSpeaking, f.voice.State(innerCircle).Status)
}

func TestVoiceService_ClassificationFailure(t *testing.T) {
	f := newVoiceFixture(t, nil)
	f.classifier.err = fmt.Errorf("classify via mock: %w", domain.ErrMalformedClassification)

	resp, err := f.voice.Turn(context.Background(), innerCircle, "mumble", "")

	assert.ErrorIs(t, err, domain.ErrMalformedClassification)
	assert.Equal(t, msgDidntGet, resp.Text)
	assert.Zero(t, f.handler.callCount())

	state := f.voice.State(innerCircle)
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, msgDidntGet, state.Response)
}

func TestVoiceService_EmptyTranscriptNeverClassified(t *testing.T) {
	client := newMockClassificationService(classifierReply{raw: knowledgeReply})
	knowledge := NewKnowledgeService(memory.NewKnowledgeStore(), nil)
	voice := NewVoiceService(NewIntentService(client, nil, nil), knowledge, NewActionRegistry(), nil)

	resp, err := voice.Turn(context.Background(), innerCircle, "   ", "")

	assert.ErrorIs(t, err, domain.ErrEmptyTranscript)
	assert.Equal(t, msgDidntCatch, resp.Text)
	assert.Zero(t, client.callCount())
}

func TestVoiceService_StartWhileBusy(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.9))

	require.NoError(t, f.voice.Start(innerCircle))
	before := f.voice.State(innerCircle)

	err := f.voice.Start(innerCircle)

	assert.ErrorIs(t, err, domain.ErrSessionBusy)
	assert.Equal(t, before, f.voice.State(innerCircle), "busy rejection leaves state untouched")
}

func TestVoiceService_SubmitWithoutStart(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.9))

	_, err := f.voice.Submit(context.Background(), innerCircle, "Call Ramesh", "")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Zero(t, f.classifier.callCount())
	assert.Equal(t, domain.StatusIdle, f.voice.State(innerCircle).Status)
}

func TestVoiceService_CancelWhileListening(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.9))

	require.NoError(t, f.voice.Start(innerCircle))
	f.voice.Cancel(innerCircle)

	assert.Equal(t, domain.StatusIdle, f.voice.State(innerCircle).Status)
	assert.Zero(t, f.classifier.callCount(), "no classification after cancel")

	_, err := f.voice.Submit(context.Background(), innerCircle, "Call Ramesh", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "partial transcript is discarded")
}

func TestVoiceService_CancelDuringClassification(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newVoiceFixture(t, callIntent(0.9))
	f.classifier.started = make(chan struct{}, 1)
	f.classifier.release = make(chan struct{})

	require.NoError(t, f.voice.Start(innerCircle))

	errCh := make(chan error, 1)
	go func() {
		_, err := f.voice.Submit(context.Background(), innerCircle, "Call Ramesh", "")
		errCh <- err
	}()
	<-f.classifier.started

	// A second submission while processing is busy, not queued.
	_, err := f.voice.Submit(context.Background(), innerCircle, "Call Ramesh", "")
	assert.ErrorIs(t, err, domain.ErrSessionBusy)
	assert.Equal(t, domain.StatusProcessing, f.voice.State(innerCircle).Status)

	f.voice.Cancel(innerCircle)

	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.Equal(t, domain.StatusIdle, f.voice.State(innerCircle).Status)
	assert.Zero(t, f.handler.callCount(), "cancelled turns never dispatch")
}

func TestVoiceService_CancelDuringDispatchCompletesAction(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newVoiceFixture(t, callIntent(0.9))
	f.handler.entered = make(chan struct{}, 1)
	f.handler.block = 30 * time.Millisecond

	require.NoError(t, f.voice.Start(innerCircle))

	errCh := make(chan error, 1)
	go func() {
		_, err := f.voice.Submit(context.Background(), innerCircle, "Call Ramesh", "")
		errCh <- err
	}()
	<-f.handler.entered
	f.voice.Cancel(innerCircle)

	assert.ErrorIs(t, <-errCh, context.Canceled, "result of a cancelled turn is discarded")
	assert.Equal(t, domain.StatusIdle, f.voice.State(innerCircle).Status)
	f.handler.mu.Lock()
	assert.Equal(t, 1, f.handler.finished, "a started dispatch runs to completion")
	f.handler.mu.Unlock()
}

func TestVoiceService_ErrorReset(t *testing.T) {
	f := newVoiceFixture(t, nil)
	f.classifier.err = domain.ErrMalformedClassification

	_, err := f.voice.Turn(context.Background(), innerCircle, "mumble", "")
	require.Error(t, err)
	require.Equal(t, domain.StatusError, f.voice.State(innerCircle).Status)

	// The error is shown for ErrorResetAfter before a new turn may start.
	assert.ErrorIs(t, f.voice.Start(innerCircle), domain.ErrSessionBusy)
	assert.Zero(t, f.voice.ResetStale())

	f.clock.advance(5 * time.Second)
	require.NoError(t, f.voice.Start(innerCircle))
	assert.Equal(t, domain.StatusListening, f.voice.State(innerCircle).Status)
}

func TestVoiceService_ResetStaleAndAcknowledge(t *testing.T) {
	f := newVoiceFixture(t, nil)
	f.classifier.err = domain.ErrMalformedClassification
	alice := domain.CallerContext{UserID: "alice", Tier: domain.TierMember}
	bob := domain.CallerContext{UserID: "bob", Tier: domain.TierMember}

	_, _ = f.voice.Turn(context.Background(), alice, "mumble", "")
	_, _ = f.voice.Turn(context.Background(), bob, "mumble", "")

	require.NoError(t, f.voice.Acknowledge(bob))
	assert.Equal(t, domain.StatusIdle, f.voice.State(bob).Status)
	assert.ErrorIs(t, f.voice.Acknowledge(bob), domain.ErrInvalidTransition)

	f.clock.advance(6 * time.Second)
	assert.Equal(t, 1, f.voice.ResetStale())
	assert.Equal(t, domain.StatusIdle, f.voice.State(alice).Status)
}

func TestVoiceService_PlaybackCompleteOnlyWhileSpeaking(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.9))

	assert.ErrorIs(t, f.voice.PlaybackComplete(innerCircle), domain.ErrInvalidTransition)
}

func TestVoiceService_DuplicateSubmissionReusesIntent(t *testing.T) {
	f := newVoiceFixture(t, knowledgeIntent("WeVysya is a business network."))
	ctx := context.Background()

	turn := func(transcript string) {
		t.Helper()
		_, err := f.voice.Turn(ctx, innerCircle, transcript, "")
		require.NoError(t, err)
		require.NoError(t, f.voice.PlaybackComplete(innerCircle))
	}

	turn("What is WeVysya?")
	f.clock.advance(time.Second)
	turn("What is WeVysya?")
	assert.Equal(t, 1, f.classifier.callCount(), "double-tap within the window is served from cache")

	turn("Tell me about chapters")
	turn("What is WeVysya?")
	assert.Equal(t, 3, f.classifier.callCount(), "only the immediately preceding turn is cached")

	f.clock.advance(4 * time.Second)
	turn("What is WeVysya?")
	assert.Equal(t, 4, f.classifier.callCount(), "cache expires after the window")
}

func TestVoiceService_DuplicateActionIsNotDispatchedTwice(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.9))
	ctx := context.Background()

	first, err := f.voice.Turn(ctx, innerCircle, "Call Ramesh", "")
	require.NoError(t, err)
	require.NoError(t, f.voice.PlaybackComplete(innerCircle))

	f.clock.advance(time.Second)
	second, err := f.voice.Turn(ctx, innerCircle, "Call Ramesh", "")
	require.NoError(t, err)

	assert.Equal(t, 1, f.handler.callCount(), "double-tap replays the outcome")
	assert.Equal(t, 1, f.classifier.callCount())
	assert.Equal(t, first, second)
	assert.Equal(t, domain.StatusSpeaking, f.voice.State(innerCircle).Status)
	require.NoError(t, f.voice.PlaybackComplete(innerCircle))

	f.clock.advance(4 * time.Second)
	_, err = f.voice.Turn(ctx, innerCircle, "Call Ramesh", "")
	require.NoError(t, err)
	assert.Equal(t, 2, f.handler.callCount(), "outside the window the action runs again")
}

func TestVoiceService_CallerDeadlineIsClassificationTimeout(t *testing.T) {
	client := newMockClassificationService()
	client.hang = true
	knowledge := NewKnowledgeService(memory.NewKnowledgeStore(), nil)
	registry := newRegistryWith(t, callMemberDefinition(&recordingHandler{}))
	voice := NewVoiceService(NewIntentService(client, nil, nil), knowledge, registry, NewSynthesizer())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	resp, err := voice.Turn(ctx, innerCircle, "Call Ramesh", "")

	assert.ErrorIs(t, err, domain.ErrClassificationTimeout)
	require.NotNil(t, resp)
	assert.Equal(t, domain.ResponseApology, resp.Kind)
	assert.Equal(t, domain.StatusError, voice.State(innerCircle).Status)
}

func TestVoiceService_SessionsArePerCaller(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.9))
	alice := domain.CallerContext{UserID: "alice", Authenticated: true, Tier: domain.TierInnerCircle}
	bob := domain.CallerContext{UserID: "bob", Authenticated: true, Tier: domain.TierInnerCircle}

	require.NoError(t, f.voice.Start(alice))
	require.NoError(t, f.voice.Start(bob), "another caller is not blocked")

	assert.Equal(t, domain.StatusListening, f.voice.State(alice).Status)
	assert.Equal(t, domain.StatusListening, f.voice.State(bob).Status)
	assert.NotEqual(t, f.voice.State(alice).TurnID, f.voice.State(bob).TurnID)
}

func TestVoiceService_ConcurrentCallers(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.9))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			caller := domain.CallerContext{UserID: fmt.Sprintf("member-%d", n), Authenticated: true, Tier: domain.TierAdmin}
			_, err := f.voice.Turn(context.Background(), caller, "Call Ramesh", "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, f.handler.callCount())
}

func TestVoiceService_Telemetry(t *testing.T) {
	f := newVoiceFixture(t, callIntent(0.3))

	_, err := f.voice.Turn(context.Background(), innerCircle, "Call Ramesh", "")
	require.NoError(t, err)

	assert.Equal(t, []domain.ResponseKind{domain.ResponseClarification}, f.telemetry.turns)
}
