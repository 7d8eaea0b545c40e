// Package actions provides the action catalog view for the TUI.
package actions

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wevysya/voiceos/internal/adapters/driving/tui/keymap"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/styles"
	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
)

// View lists the registered actions and marks the ones the caller may run.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	dispatcher driving.ActionDispatcher
	caller     domain.CallerContext

	actions  []domain.ActionInfo
	selected int
	width    int
	height   int
}

// NewView creates a new action catalog view.
func NewView(s *styles.Styles, km *keymap.KeyMap, dispatcher driving.ActionDispatcher) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		dispatcher: dispatcher,
		caller:     domain.Anonymous(),
		width:      80,
		height:     24,
	}
}

// WithCaller sets the caller used to mark allowed actions.
func (v *View) WithCaller(caller domain.CallerContext) *View {
	v.caller = caller
	return v
}

// Init loads the catalog.
func (v *View) Init() tea.Cmd {
	v.Reload()
	return nil
}

// Reload re-reads the catalog from the dispatcher.
func (v *View) Reload() {
	v.actions = nil
	if v.dispatcher != nil {
		v.actions = v.dispatcher.Actions()
	}
	if v.selected >= len(v.actions) {
		v.selected = 0
	}
}

// Update handles list navigation.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Up):
			if v.selected > 0 {
				v.selected--
			}
		case keymap.Matches(msg.String(), v.keymap.Down):
			if v.selected < len(v.actions)-1 {
				v.selected++
			}
		}
	}
	return v, nil
}

// Allowed reports whether the caller passes the action's auth and tier checks.
func (v *View) Allowed(info domain.ActionInfo) bool {
	if info.RequiresAuth && !v.caller.Authenticated {
		return false
	}
	return v.caller.Tier.Satisfies(info.RequiredTier)
}

// View renders the catalog with the selected action's parameters.
func (v *View) View() string {
	sections := []string{v.styles.Header.Render("Actions"), ""}

	if len(v.actions) == 0 {
		sections = append(sections, v.styles.Dim.Render("No actions registered"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	for i, info := range v.actions {
		sections = append(sections, v.renderRow(i, info))
	}

	sections = append(sections, "", v.renderDetail(v.actions[v.selected]), "", v.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderRow(index int, info domain.ActionInfo) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}
	mark := "✓"
	if !v.Allowed(info) {
		mark = "✗"
	}

	row := fmt.Sprintf("%s%s %-20s %-12s %s", indicator, mark, info.Name, info.RequiredTier, info.Description)
	switch {
	case index == v.selected:
		return v.styles.Highlight.Render(row)
	case !v.Allowed(info):
		return v.styles.Dim.Render(row)
	default:
		return v.styles.Body.Render(row)
	}
}

func (v *View) renderDetail(info domain.ActionInfo) string {
	lines := []string{v.styles.Label.Render(info.Name)}

	var flags []string
	if info.RequiresAuth {
		flags = append(flags, "requires sign-in")
	}
	if info.Navigates {
		flags = append(flags, "navigates")
	}
	if len(flags) > 0 {
		lines = append(lines, v.styles.Dim.Render(strings.Join(flags, ", ")))
	}

	if len(info.Parameters) == 0 {
		lines = append(lines, v.styles.Dim.Render("No parameters"))
	}
	for _, p := range info.Parameters {
		req := "optional"
		if p.Required {
			req = "required"
		}
		line := fmt.Sprintf("  %s (%s, %s)", p.Name, p.Type, req)
		if p.Description != "" {
			line += " " + p.Description
		}
		lines = append(lines, v.styles.Body.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderHelp() string {
	h := v.keymap.SwitchView.Help()
	return v.styles.Hint.Render(fmt.Sprintf("↑/↓: select | %s: back to console", h.Key))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}

// Count returns the number of actions listed.
func (v *View) Count() int {
	return len(v.actions)
}
