package services

import (
	"context"
	"sync"
	"time"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
)

// Ensure VoiceService implements the interface.
var _ driving.VoiceService = (*VoiceService)(nil)

// VoiceService owns one Session per caller and runs turns through the pipeline.
type VoiceService struct {
	p *pipeline

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewVoiceService creates a voice service with default pipeline policy.
func NewVoiceService(
	classifier driving.IntentClassifier,
	knowledge KnowledgeSearcher,
	dispatcher driving.ActionDispatcher,
	synth *Synthesizer,
) *VoiceService {
	if synth == nil {
		synth = NewSynthesizer()
	}
	return &VoiceService{
		p: &pipeline{
			classifier: classifier,
			knowledge:  knowledge,
			dispatcher: dispatcher,
			synth:      synth,
			telemetry:  driven.NopTelemetry{},
			policy:     domain.DefaultPipelineSettings(),
			now:        time.Now,
		},
		sessions: make(map[string]*Session),
	}
}

// SetPolicy replaces the pipeline policy. Call before the first turn.
func (v *VoiceService) SetPolicy(p domain.PipelineSettings) {
	v.p.policy = p
}

// SetTelemetry sets the telemetry sink. Call before the first turn.
func (v *VoiceService) SetTelemetry(t driven.Telemetry) {
	if t == nil {
		t = driven.NopTelemetry{}
	}
	v.p.telemetry = t
}

// session returns the caller's session, creating it on first use.
func (v *VoiceService) session(caller domain.CallerContext) *Session {
	key := caller.SessionKey()

	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.sessions[key]
	if !ok {
		s = newSession(key, v.p)
		v.sessions[key] = s
	}
	return s
}

// Start moves the caller's session to listening.
func (v *VoiceService) Start(caller domain.CallerContext) error {
	return v.session(caller).Start()
}

// Submit processes a finalised transcript.
func (v *VoiceService) Submit(
	ctx context.Context, caller domain.CallerContext, transcript, convContext string,
) (*domain.Response, error) {
	return v.session(caller).Submit(ctx, caller, transcript, convContext)
}

// Turn starts capture and submits transcript in one call.
func (v *VoiceService) Turn(
	ctx context.Context, caller domain.CallerContext, transcript, convContext string,
) (*domain.Response, error) {
	s := v.session(caller)
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s.Submit(ctx, caller, transcript, convContext)
}

// Cancel returns the caller's session to idle.
func (v *VoiceService) Cancel(caller domain.CallerContext) {
	v.session(caller).Cancel()
}

// PlaybackComplete moves the caller's session from speaking to idle.
func (v *VoiceService) PlaybackComplete(caller domain.CallerContext) error {
	return v.session(caller).PlaybackComplete()
}

// Acknowledge moves the caller's session from error to idle.
func (v *VoiceService) Acknowledge(caller domain.CallerContext) error {
	return v.session(caller).Acknowledge()
}

// State returns a snapshot of the caller's session.
func (v *VoiceService) State(caller domain.CallerContext) domain.VoiceOSState {
	return v.session(caller).State()
}

// ResetStale resets every session stuck in error past the reset delay.
func (v *VoiceService) ResetStale() int {
	v.mu.Lock()
	sessions := make([]*Session, 0, len(v.sessions))
	for _, s := range v.sessions {
		sessions = append(sessions, s)
	}
	v.mu.Unlock()

	reset := 0
	for _, s := range sessions {
		if s.ResetIfStale() {
			reset++
		}
	}
	return reset
}
