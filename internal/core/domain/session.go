package domain

import "time"

// VoiceStatus is the state of a voice session.
type VoiceStatus string

// Session states.
const (
	StatusIdle       VoiceStatus = "idle"
	StatusListening  VoiceStatus = "listening"
	StatusProcessing VoiceStatus = "processing"
	StatusSpeaking   VoiceStatus = "speaking"
	StatusError      VoiceStatus = "error"
)

// String returns the string representation.
func (s VoiceStatus) String() string {
	return string(s)
}

// Description returns a short user-facing label for the status.
func (s VoiceStatus) Description() string {
	switch s {
	case StatusIdle:
		return "Ready"
	case StatusListening:
		return "Listening..."
	case StatusProcessing:
		return "Thinking..."
	case StatusSpeaking:
		return "Speaking"
	case StatusError:
		return "Something went wrong"
	default:
		return "Unknown"
	}
}

// CanTransition reports whether the state machine allows from -> to.
// Cancellation (any -> idle) is always allowed.
func CanTransition(from, to VoiceStatus) bool {
	if to == StatusIdle {
		return true
	}
	switch from {
	case StatusIdle:
		return to == StatusListening
	case StatusListening:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusSpeaking || to == StatusError
	default:
		return false
	}
}

// VoiceOSState is a snapshot of a voice session.
type VoiceOSState struct {
	// Status is the current state.
	Status VoiceStatus `json:"status"`

	// Transcript is the latest finalised transcript.
	Transcript string `json:"transcript,omitempty"`

	// Response is the latest user-facing response text.
	Response string `json:"response,omitempty"`

	// Intent is the latest classified intent.
	Intent *Intent `json:"intent,omitempty"`

	// Confidence mirrors Intent.Confidence for quick display.
	Confidence float64 `json:"confidence"`

	// TurnID identifies the current or most recent turn.
	TurnID string `json:"turn_id,omitempty"`

	// UpdatedAt is when the state last changed.
	UpdatedAt time.Time `json:"updated_at"`
}
