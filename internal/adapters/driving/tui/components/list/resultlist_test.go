package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wevysya/voiceos/internal/adapters/driving/tui/styles"
	"github.com/wevysya/voiceos/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	meta := func(title string) domain.DocumentMetadata {
		return domain.DocumentMetadata{Title: title, Category: "membership", Source: "handbook"}
	}
	return []domain.SearchResult{
		{ID: "1", Content: "Members get early access.", Metadata: meta("Tiers"), Similarity: 0.95, Mode: domain.SearchModeSimilarity},
		{ID: "2", Content: "Referrals are reviewed weekly.", Metadata: meta("Referrals"), Similarity: 0.85, Mode: domain.SearchModeSimilarity},
		{ID: "3", Content: "Events run monthly.", Metadata: meta("Events"), Similarity: domain.KeywordMatchSimilarity, Mode: domain.SearchModeKeyword},
	}
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.Init())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestResultList_SetResults(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())
	list.SetSelected(2)

	list.SetResults(sampleResults())

	assert.Equal(t, 3, list.Count())
	assert.False(t, list.IsEmpty())
	assert.Equal(t, 0, list.Selected(), "new results reset the selection")
}

func TestResultList_SetSelected_OutOfRange(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.SetSelected(5)
	assert.Equal(t, 0, list.Selected())

	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, list.Selected(), "stops at the last item")

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, list.Selected())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 1, list.Selected(), "letters are left to the input")
}

func TestResultList_SelectedResult(t *testing.T) {
	list := NewResultList(nil)
	assert.Nil(t, list.SelectedResult())

	list.SetResults(sampleResults())
	list.SetSelected(1)

	got := list.SelectedResult()
	require.NotNil(t, got)
	assert.Equal(t, "Referrals", got.Metadata.Title)
}

func TestResultList_View(t *testing.T) {
	list := NewResultList(nil)
	assert.Contains(t, list.View(), "No sources")

	list.SetDimensions(80, 30)
	list.SetResults(sampleResults())
	view := list.View()

	assert.Contains(t, view, "Sources (3)")
	assert.Contains(t, view, "Tiers")
	assert.Contains(t, view, "0.95")
	assert.Contains(t, view, "keyword")
	assert.Contains(t, view, "membership")
}

func TestResultList_View_TruncatesLongTitle(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(40, 30)
	list.SetResults([]domain.SearchResult{{
		Metadata: domain.DocumentMetadata{Title: strings.Repeat("x", 100)},
		Mode:     domain.SearchModeSimilarity,
	}})

	assert.Contains(t, list.View(), "...")
}

func TestResultList_SetDimensions(t *testing.T) {
	list := NewResultList(nil)

	list.SetDimensions(120, 40)

	assert.Equal(t, 120, list.Width())
	assert.Equal(t, 40, list.Height())
}
