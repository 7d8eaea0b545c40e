// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wevysya/voiceos/internal/adapters/driving/tui/keymap"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/styles"
	"github.com/wevysya/voiceos/internal/core/domain"
)

// Bar displays the session status and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	status     domain.VoiceStatus
	message    string
	confidence float64
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		status: domain.StatusIdle,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.Bar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the status indicator and message.
func (s *Bar) renderLeft() string {
	indicator := s.styles.Status(s.status).Render("● " + s.status.Description())

	switch {
	case s.status == domain.StatusError && s.message != "":
		return indicator + " " + s.styles.Apology.Render(s.message)
	case s.message != "":
		return indicator + " " + s.styles.Dim.Render(s.message)
	case s.confidence > 0:
		return indicator + " " + s.styles.Dim.Render(fmt.Sprintf("confidence %.2f", s.confidence))
	}
	return indicator
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.status == domain.StatusError {
		bindings = []key.Binding{s.keymap.Acknowledge, s.keymap.Quit}
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Dim.Render(strings.Join(hints, " | "))
}

// SetStatus sets the displayed session status.
func (s *Bar) SetStatus(status domain.VoiceStatus) {
	s.status = status
}

// Status returns the displayed session status.
func (s *Bar) Status() domain.VoiceStatus {
	return s.status
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetConfidence sets the last classification confidence.
func (s *Bar) SetConfidence(confidence float64) {
	s.confidence = confidence
}

// Confidence returns the last classification confidence.
func (s *Bar) Confidence() float64 {
	return s.confidence
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Sync copies a session snapshot into the bar.
func (s *Bar) Sync(state domain.VoiceOSState) {
	s.status = state.Status
	s.confidence = state.Confidence
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.status = domain.StatusIdle
	s.message = ""
	s.confidence = 0
}
