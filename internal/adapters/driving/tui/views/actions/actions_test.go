package actions

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// mockDispatcher implements driving.ActionDispatcher for testing.
type mockDispatcher struct {
	actions []domain.ActionInfo
}

func (m *mockDispatcher) Dispatch(context.Context, domain.VoiceAction, domain.CallerContext) (domain.ActionResult, error) {
	return domain.Succeeded(nil), nil
}

func (m *mockDispatcher) Actions() []domain.ActionInfo { return m.actions }

func catalog() *mockDispatcher {
	return &mockDispatcher{actions: []domain.ActionInfo{
		{
			Name:         "navigate",
			Description:  "Open an app screen",
			RequiredTier: domain.TierGuest,
			Navigates:    true,
			Parameters: domain.ParameterSchema{
				{Name: "screen", Type: domain.ParamString, Required: true, Description: "target screen"},
			},
		},
		{
			Name:         "submit_referral",
			Description:  "Refer a business contact",
			RequiredTier: domain.TierMember,
			RequiresAuth: true,
		},
	}}
}

func TestNewView_NoDispatcher(t *testing.T) {
	v := NewView(nil, nil, nil)

	assert.Nil(t, v.Init())
	assert.Zero(t, v.Count())
	assert.Contains(t, v.View(), "No actions registered")
}

func TestView_ListsActions(t *testing.T) {
	v := NewView(nil, nil, catalog())
	v.Init()

	view := v.View()
	assert.Equal(t, 2, v.Count())
	assert.Contains(t, view, "navigate")
	assert.Contains(t, view, "submit_referral")
	assert.Contains(t, view, "screen (string, required) target screen")
	assert.Contains(t, view, "navigates")
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil, nil, catalog())
	v.Init()

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.Selected())
	assert.Contains(t, v.View(), "requires sign-in")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.Selected())
}

func TestView_Allowed(t *testing.T) {
	d := catalog()
	referral := d.actions[1]

	guest := NewView(nil, nil, d)
	assert.True(t, guest.Allowed(d.actions[0]))
	assert.False(t, guest.Allowed(referral))

	unauthenticated := NewView(nil, nil, d).WithCaller(domain.CallerContext{UserID: "m-1", Tier: domain.TierMember})
	assert.False(t, unauthenticated.Allowed(referral))

	member := NewView(nil, nil, d).WithCaller(domain.CallerContext{
		UserID: "m-1", Tier: domain.TierMember, Authenticated: true,
	})
	assert.True(t, member.Allowed(referral))
}

func TestView_ReloadClampsSelection(t *testing.T) {
	d := catalog()
	v := NewView(nil, nil, d)
	v.Init()
	v.Update(tea.KeyMsg{Type: tea.KeyDown})

	d.actions = d.actions[:1]
	v.Reload()

	assert.Equal(t, 0, v.Selected())
}
