package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
	"github.com/wevysya/voiceos/internal/logger"
)

// KnowledgeSearcher is the part of the knowledge service a turn needs.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

// pipeline holds the collaborators shared by every session.
type pipeline struct {
	classifier driving.IntentClassifier
	knowledge  KnowledgeSearcher
	dispatcher driving.ActionDispatcher
	synth      *Synthesizer
	telemetry  driven.Telemetry
	policy     domain.PipelineSettings
	now        func() time.Time
}

// lastTurn is the single-entry cache used to absorb duplicate submissions.
// outcome is set once an action has been dispatched for the turn.
type lastTurn struct {
	transcript string
	context    string
	intent     domain.Intent
	outcome    *domain.Response
	at         time.Time
}

// Session is the state machine of one caller's voice interaction:
// idle -> listening -> processing -> (speaking | error) -> idle.
// The mutex guards state only and is never held across network calls.
type Session struct {
	key string
	p   *pipeline

	mu      sync.Mutex
	state   domain.VoiceOSState
	errorAt time.Time
	cancel  context.CancelFunc
	last    *lastTurn
}

func newSession(key string, p *pipeline) *Session {
	return &Session{
		key:   key,
		p:     p,
		state: domain.VoiceOSState{Status: domain.StatusIdle, UpdatedAt: p.now()},
	}
}

// State returns a snapshot of the session.
func (s *Session) State() domain.VoiceOSState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins capture. An error that has been shown for at least
// ErrorResetAfter is reset implicitly; any other non-idle state is busy.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.Status {
	case domain.StatusIdle:
	case domain.StatusError:
		if s.p.now().Sub(s.errorAt) < s.p.policy.ErrorResetAfter {
			return fmt.Errorf("%w: showing an error", domain.ErrSessionBusy)
		}
		logger.Debug("Session %s: resetting stale error", s.key)
		s.setStatusLocked(domain.StatusIdle)
	default:
		return fmt.Errorf("%w: session is %s", domain.ErrSessionBusy, s.state.Status)
	}

	s.resetLocked()
	s.state.TurnID = uuid.New().String()
	s.setStatusLocked(domain.StatusListening)
	return nil
}

// Submit finalises the transcript and runs the turn to completion.
func (s *Session) Submit(ctx context.Context, caller domain.CallerContext, transcript, convContext string) (*domain.Response, error) {
	started := s.p.now()

	s.mu.Lock()
	switch s.state.Status {
	case domain.StatusListening:
	case domain.StatusProcessing:
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: a turn is already processing", domain.ErrSessionBusy)
	default:
		status := s.state.Status
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot submit while %s", domain.ErrInvalidTransition, status)
	}

	turnID := s.state.TurnID
	turnCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Transcript = strings.TrimSpace(transcript)
	s.setStatusLocked(domain.StatusProcessing)
	cached := s.duplicateLocked(transcript, convContext)
	s.mu.Unlock()
	defer cancel()

	logger.Section("Voice Turn")
	logger.Debug("Session %s turn %s: %q", s.key, turnID, transcript)

	if cached != nil && cached.outcome != nil {
		logger.Debug("Replaying action outcome of duplicate submission")
		return s.finish(turnID, started, *cached.outcome, nil)
	}

	var intent *domain.Intent
	var err error
	if cached != nil {
		logger.Debug("Reusing intent from duplicate submission")
		intent = &cached.intent
	} else {
		intent, err = s.p.classifier.Classify(turnCtx, transcript, convContext)
	}
	if err != nil {
		return s.finish(turnID, started, s.p.synth.Failure(err, nil), err)
	}
	s.remember(transcript, convContext, intent)

	resp, err := s.respond(turnCtx, turnID, caller, transcript, intent)
	if err == nil && resp.ActionResult != nil {
		s.rememberOutcome(resp)
	}
	return s.finish(turnID, started, resp, err)
}

// respond runs the knowledge or action branch for a classified intent.
// Knowledge search and dispatch are never both invoked.
func (s *Session) respond(
	ctx context.Context, turnID string, caller domain.CallerContext, transcript string, intent *domain.Intent,
) (domain.Response, error) {
	switch intent.Type {
	case domain.IntentKnowledge:
		results, err := s.p.knowledge.Search(ctx, transcript, s.p.policy.SearchLimit)
		if err != nil {
			return s.p.synth.Failure(err, intent), err
		}
		return s.p.synth.Answer(intent, results), nil

	case domain.IntentAction:
		if !intent.Actionable(s.p.policy.ConfidenceThreshold) {
			logger.Info("Confidence %.2f below %.2f, asking for clarification",
				intent.Confidence, s.p.policy.ConfidenceThreshold)
			return s.p.synth.Clarification(intent), nil
		}
		if !s.current(turnID) {
			return domain.Response{}, context.Canceled
		}
		// Once started, a dispatch runs to completion even if the turn is cancelled.
		result, err := s.p.dispatcher.Dispatch(context.WithoutCancel(ctx), *intent.Action, caller)
		if err != nil {
			return s.p.synth.Failure(err, intent), err
		}
		return s.p.synth.ActionOutcome(intent, result), nil

	default:
		err := fmt.Errorf("%w: intent type %q", domain.ErrMalformedClassification, intent.Type)
		return s.p.synth.Failure(err, intent), err
	}
}

// finish publishes the turn outcome unless the turn was cancelled meanwhile.
func (s *Session) finish(turnID string, started time.Time, resp domain.Response, err error) (*domain.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.TurnID != turnID || s.state.Status != domain.StatusProcessing {
		logger.Debug("Session %s: discarding result of cancelled turn %s", s.key, turnID)
		return nil, context.Canceled
	}
	s.cancel = nil

	if errors.Is(err, context.Canceled) {
		s.resetLocked()
		s.setStatusLocked(domain.StatusIdle)
		return nil, err
	}

	s.state.Response = resp.Text
	s.state.Intent = resp.Intent
	if resp.Intent != nil {
		s.state.Confidence = resp.Intent.Confidence
	}

	if err != nil {
		logger.Warn("Turn %s failed (%s): %v", turnID, domain.ErrorKind(err), err)
		s.errorAt = s.p.now()
		s.setStatusLocked(domain.StatusError)
	} else {
		s.setStatusLocked(domain.StatusSpeaking)
	}
	s.p.telemetry.TurnCompleted(resp.Kind, s.p.now().Sub(started))
	return &resp, err
}

// Cancel returns the session to idle from any state, discarding in-flight work.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.state.Status != domain.StatusIdle {
		logger.Debug("Session %s: cancelled while %s", s.key, s.state.Status)
	}
	s.resetLocked()
	s.setStatusLocked(domain.StatusIdle)
}

// PlaybackComplete moves speaking -> idle.
func (s *Session) PlaybackComplete() error {
	return s.toIdleFrom(domain.StatusSpeaking)
}

// Acknowledge moves error -> idle.
func (s *Session) Acknowledge() error {
	return s.toIdleFrom(domain.StatusError)
}

// ResetIfStale resets an error shown for at least ErrorResetAfter.
func (s *Session) ResetIfStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status != domain.StatusError || s.p.now().Sub(s.errorAt) < s.p.policy.ErrorResetAfter {
		return false
	}
	s.resetLocked()
	s.setStatusLocked(domain.StatusIdle)
	return true
}

func (s *Session) toIdleFrom(from domain.VoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status != from {
		return fmt.Errorf("%w: session is %s, not %s", domain.ErrInvalidTransition, s.state.Status, from)
	}
	s.resetLocked()
	s.setStatusLocked(domain.StatusIdle)
	return nil
}

// current reports whether turnID is still the processing turn.
func (s *Session) current(turnID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TurnID == turnID && s.state.Status == domain.StatusProcessing
}

// duplicateLocked returns a copy of the previous turn for an identical
// submission inside the duplicate window.
func (s *Session) duplicateLocked(transcript, convContext string) *lastTurn {
	if s.last == nil {
		return nil
	}
	if s.last.transcript != strings.TrimSpace(transcript) || s.last.context != convContext {
		return nil
	}
	if s.p.now().Sub(s.last.at) > s.p.policy.DuplicateWindow {
		return nil
	}
	last := *s.last
	return &last
}

func (s *Session) remember(transcript, convContext string, intent *domain.Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &lastTurn{
		transcript: strings.TrimSpace(transcript),
		context:    convContext,
		intent:     *intent,
		at:         s.p.now(),
	}
}

// rememberOutcome attaches a dispatched action's response to the cached turn.
func (s *Session) rememberOutcome(resp domain.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil {
		s.last.outcome = &resp
	}
}

func (s *Session) resetLocked() {
	s.state.Transcript = ""
	s.state.Response = ""
	s.state.Intent = nil
	s.state.Confidence = 0
	s.errorAt = time.Time{}
}

func (s *Session) setStatusLocked(to domain.VoiceStatus) {
	if !domain.CanTransition(s.state.Status, to) {
		logger.Warn("Session %s: unexpected transition %s -> %s", s.key, s.state.Status, to)
	}
	s.state.Status = to
	s.state.UpdatedAt = s.p.now()
}
