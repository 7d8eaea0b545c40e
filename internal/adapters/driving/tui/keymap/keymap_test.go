package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_QuitBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Quit.Keys()
	assert.Contains(t, keys, "ctrl+c")
	assert.NotContains(t, keys, "q")
}

func TestDefaultKeyMap_SubmitBinding(t *testing.T) {
	km := DefaultKeyMap()

	assert.Contains(t, km.Submit.Keys(), "enter")
}

func TestDefaultKeyMap_CancelBinding(t *testing.T) {
	km := DefaultKeyMap()

	assert.Contains(t, km.Cancel.Keys(), "esc")
}

func TestDefaultKeyMap_AcknowledgeBinding(t *testing.T) {
	km := DefaultKeyMap()

	assert.Contains(t, km.Acknowledge.Keys(), "ctrl+r")
}

func TestDefaultKeyMap_NoPrintableKeys(t *testing.T) {
	km := DefaultKeyMap()

	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				assert.Greater(t, len(k), 1, "binding %q would swallow typed input", k)
			}
		}
	}
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()

	require.Len(t, bindings, 3)
	assert.Equal(t, km.Submit, bindings[0])
	assert.Equal(t, km.Quit, bindings[1])
	assert.Equal(t, km.Help, bindings[2])
}

func TestConsoleHelp(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ConsoleHelp(), 4)
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.FullHelp()

	assert.Len(t, bindings, 3)    // 3 groups
	assert.Len(t, bindings[0], 3) // Up, Down, SwitchView
	assert.Len(t, bindings[1], 3) // Submit, Cancel, Acknowledge
	assert.Len(t, bindings[2], 2) // Help, Quit
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("f1", km.Help))
	assert.True(t, Matches("tab", km.SwitchView))
	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("down", km.Up))
}

func TestBindings_HaveHelp(t *testing.T) {
	km := DefaultKeyMap()

	testCases := []struct {
		name    string
		binding key.Binding
	}{
		{"Quit", km.Quit},
		{"Help", km.Help},
		{"Submit", km.Submit},
		{"Cancel", km.Cancel},
		{"Acknowledge", km.Acknowledge},
		{"SwitchView", km.SwitchView},
		{"Up", km.Up},
		{"Down", km.Down},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			help := tc.binding.Help()
			assert.NotEmpty(t, help.Key, "binding should have help key")
		})
	}
}
