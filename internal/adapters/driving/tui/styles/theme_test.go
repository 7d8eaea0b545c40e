package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/wevysya/voiceos/internal/core/domain"
)

func TestWeVysyaPalette_StatusColoursAreDistinct(t *testing.T) {
	p := WeVysyaPalette()

	seen := make(map[lipgloss.Color]domain.VoiceStatus)
	for _, status := range []domain.VoiceStatus{
		domain.StatusIdle, domain.StatusListening, domain.StatusProcessing, domain.StatusSpeaking, domain.StatusError,
	} {
		c := p.StatusColour(status)
		assert.NotEmpty(t, c)
		if other, ok := seen[c]; ok {
			t.Errorf("%s and %s share colour %s", status, other, c)
		}
		seen[c] = status
	}
}

func TestStyles_Status(t *testing.T) {
	s := DefaultStyles()
	p := s.Palette()

	assert.Equal(t, p.Thinking, s.Status(domain.StatusProcessing).GetForeground())
	assert.Equal(t, p.Failed, s.Status(domain.StatusError).GetForeground())
	assert.Equal(t, p.Dim, s.Status("unknown").GetForeground())
}

func TestStyles_PromptFollowsStatus(t *testing.T) {
	s := DefaultStyles()
	p := s.Palette()

	assert.Equal(t, p.Frame, s.Prompt(domain.StatusIdle).GetBorderTopForeground())
	assert.Equal(t, p.Listening, s.Prompt(domain.StatusListening).GetBorderTopForeground())
	assert.Equal(t, p.Thinking, s.Prompt(domain.StatusProcessing).GetBorderTopForeground())
}

func TestStyles_Reply(t *testing.T) {
	s := DefaultStyles()
	p := s.Palette()

	tests := []struct {
		name   string
		kind   domain.ResponseKind
		failed bool
		want   lipgloss.Color
	}{
		{"answer", domain.ResponseAnswer, false, p.Text},
		{"action", domain.ResponseAction, false, p.Text},
		{"apology", domain.ResponseApology, false, p.Failed},
		{"failed turn", domain.ResponseClarification, true, p.Failed},
		{"access denied", domain.ResponseAccessDenied, false, p.Denied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Reply(tt.kind, tt.failed).GetForeground())
		})
	}
}
