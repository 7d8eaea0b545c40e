package driving

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// VoiceService runs voice turns, one session per caller.
type VoiceService interface {
	// Start moves the caller's session from idle to listening.
	// Fails with domain.ErrSessionBusy when a turn is already in progress.
	Start(caller domain.CallerContext) error

	// Submit finalises the transcript and processes the turn with optional
	// free-text conversation context. The session ends in speaking or error;
	// the synthesized response is returned.
	Submit(ctx context.Context, caller domain.CallerContext, transcript, convContext string) (*domain.Response, error)

	// Turn is Start followed by Submit.
	Turn(ctx context.Context, caller domain.CallerContext, transcript, convContext string) (*domain.Response, error)

	// Cancel returns the caller's session to idle, discarding in-flight work.
	Cancel(caller domain.CallerContext)

	// PlaybackComplete moves the session from speaking to idle.
	PlaybackComplete(caller domain.CallerContext) error

	// Acknowledge moves the session from error to idle.
	Acknowledge(caller domain.CallerContext) error

	// State returns a snapshot of the caller's session.
	State(caller domain.CallerContext) domain.VoiceOSState

	// ResetStale returns sessions stuck in error to idle.
	// Returns the number of sessions reset.
	ResetStale() int
}
