// Package messages defines Bubbletea message types for the voice console.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/wevysya/voiceos/internal/core/domain"
)

// TranscriptChanged is sent when the transcript input changes.
type TranscriptChanged struct {
	Transcript string
}

// TurnRequested is a command to run a voice turn.
type TurnRequested struct {
	Transcript string
	Context    string
}

// TurnCompleted carries a turn's response back to the model.
// Response is nil when the turn never ran, for example because the
// session was busy.
type TurnCompleted struct {
	Transcript string
	Response   *domain.Response
	Err        error
}

// PlaybackFinished is sent once a spoken response has been played.
type PlaybackFinished struct {
	TurnID int
}

// StateRefreshed carries a fresh session snapshot.
type StateRefreshed struct {
	State domain.VoiceOSState
}

// TopicsLoaded carries the knowledge categories shown as suggestions.
type TopicsLoaded struct {
	Topics []string
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewConsole is the transcript input and response view.
	ViewConsole ViewType = iota
	// ViewActions is the action catalog view.
	ViewActions
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewConsole:
		return "console"
	case ViewActions:
		return "actions"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
