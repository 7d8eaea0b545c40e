// Package styles holds the voice console's colours and lipgloss styles.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// Palette assigns a colour to each role on the console. Every session
// status has its own colour so the status dot, the prompt frame and the
// reply text agree.
type Palette struct {
	Brand lipgloss.Color
	Text  lipgloss.Color
	Dim   lipgloss.Color
	Frame lipgloss.Color
	Bar   lipgloss.Color

	Listening lipgloss.Color
	Thinking  lipgloss.Color
	Speaking  lipgloss.Color
	Failed    lipgloss.Color
	Denied    lipgloss.Color
}

// WeVysyaPalette is the saffron-on-dark default.
func WeVysyaPalette() Palette {
	return Palette{
		Brand: "#F97316",
		Text:  "#E5E7EB",
		Dim:   "#6B7280",
		Frame: "#45475A",
		Bar:   "#181825",

		Listening: "#06B6D4",
		Thinking:  "#FACC15",
		Speaking:  "#4ADE80",
		Failed:    "#F87171",
		Denied:    "#FB923C",
	}
}

// StatusColour returns the colour that marks a session status.
func (p Palette) StatusColour(status domain.VoiceStatus) lipgloss.Color {
	switch status {
	case domain.StatusListening:
		return p.Listening
	case domain.StatusProcessing:
		return p.Thinking
	case domain.StatusSpeaking:
		return p.Speaking
	case domain.StatusError:
		return p.Failed
	default:
		return p.Dim
	}
}

// Styles are the rendered roles of the console.
type Styles struct {
	palette Palette

	Header    lipgloss.Style // app name and view titles
	Label     lipgloss.Style // section labels, action names
	Body      lipgloss.Style
	Dim       lipgloss.Style // captions, hints, previews
	Highlight lipgloss.Style // the selected row

	Transcript lipgloss.Style // what the member said
	Speech     lipgloss.Style // what the assistant says
	Apology    lipgloss.Style
	Denied     lipgloss.Style

	Bar  lipgloss.Style
	Hint lipgloss.Style
}

// New builds styles from a palette.
func New(p Palette) *Styles {
	dim := lipgloss.NewStyle().Foreground(p.Dim)
	speech := lipgloss.NewStyle().
		Foreground(p.Text).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(p.Brand).
		PaddingLeft(1)

	return &Styles{
		palette: p,

		Header:    lipgloss.NewStyle().Bold(true).Foreground(p.Brand),
		Label:     lipgloss.NewStyle().Bold(true).Foreground(p.Listening),
		Body:      lipgloss.NewStyle().Foreground(p.Text),
		Dim:       dim,
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(p.Text).Background(p.Brand),

		Transcript: dim.Italic(true),
		Speech:     speech,
		Apology:    lipgloss.NewStyle().Foreground(p.Failed),
		Denied:     lipgloss.NewStyle().Foreground(p.Denied),

		Bar:  dim.Background(p.Bar).Padding(0, 1),
		Hint: dim,
	}
}

// DefaultStyles returns styles over the WeVysya palette.
func DefaultStyles() *Styles {
	return New(WeVysyaPalette())
}

// Palette returns the colours the styles were built from.
func (s *Styles) Palette() Palette {
	return s.palette
}

// Status styles the status indicator.
func (s *Styles) Status(status domain.VoiceStatus) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.palette.StatusColour(status))
}

// Prompt frames the transcript field. The frame takes the status colour
// while a turn is under way and stays neutral when idle.
func (s *Styles) Prompt(status domain.VoiceStatus) lipgloss.Style {
	frame := s.palette.Frame
	if status != domain.StatusIdle {
		frame = s.palette.StatusColour(status)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frame).
		Padding(0, 1)
}

// Reply styles the assistant's side of an exchange.
func (s *Styles) Reply(kind domain.ResponseKind, failed bool) lipgloss.Style {
	switch {
	case failed || kind == domain.ResponseApology:
		return s.Apology
	case kind == domain.ResponseAccessDenied:
		return s.Denied
	default:
		return s.Speech
	}
}
