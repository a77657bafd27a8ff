package tui_test

import (
	"testing"

	"penumbra/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyMap_Actions(t *testing.T) {
	tests := []struct {
		name string
		mode string
		msg  tea.KeyMsg
		want tui.Action
	}{
		{"vim up", "vim", key("k"), tui.ActionUp},
		{"vim next", "vim", key("l"), tui.ActionNext},
		{"vim raise", "vim", key("K"), tui.ActionRaise},
		{"arrow in vim mode", "vim", tea.KeyMsg{Type: tea.KeyDown}, tui.ActionDown},
		{"arrow in standard mode", "standard", tea.KeyMsg{Type: tea.KeyLeft}, tui.ActionPrev},
		{"no vim letters in standard mode", "standard", key("j"), tui.ActionNone},
		{"priority", "standard", key("+"), tui.ActionRaise},
		{"toggle", "standard", tea.KeyMsg{Type: tea.KeySpace}, tui.ActionToggle},
		{"open", "vim", tea.KeyMsg{Type: tea.KeyEnter}, tui.ActionOpen},
		{"back", "vim", tea.KeyMsg{Type: tea.KeyEsc}, tui.ActionBack},
		{"inherit", "vim", key("i"), tui.ActionInherit},
		{"delete key", "standard", tea.KeyMsg{Type: tea.KeyDelete}, tui.ActionDelete},
		{"collections tab", "vim", key("2"), tui.ActionCollectionsTab},
		{"quit", "standard", tea.KeyMsg{Type: tea.KeyCtrlC}, tui.ActionQuit},
		{"unbound", "vim", key("x"), tui.ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km := tui.NewKeyMap(tt.mode)
			assert.Equal(t, tt.want, km.Action(tt.msg))
			if tt.want != tui.ActionNone {
				assert.True(t, km.Is(tt.msg, tt.want))
			}
		})
	}
}

func TestKeyMap_DefaultsToVim(t *testing.T) {
	km := tui.NewKeyMap("")

	assert.Equal(t, "vim", km.Mode())
	assert.True(t, km.Is(key("k"), tui.ActionUp))
	assert.False(t, km.Is(key("x"), tui.ActionNone))
}

func TestKeyMap_Help(t *testing.T) {
	assert.Contains(t, tui.NewKeyMap("vim").NavigationHelp(), "j/k")
	assert.Contains(t, tui.NewKeyMap("standard").NavigationHelp(), "↑/↓")
}

func TestKeyMap_FullHelpListsEditorKeys(t *testing.T) {
	for _, mode := range []string{"vim", "standard"} {
		help := tui.NewKeyMap(mode).FullHelp()
		assert.Contains(t, help, "Raise/lower priority", mode)
		assert.Contains(t, help, "inheriting", mode)
		assert.Contains(t, help, "Collections:", mode)
		assert.NotContains(t, help, "\n\n\n", mode)
	}
	assert.Contains(t, tui.NewKeyMap("vim").FullHelp(), "j/k")
	assert.Contains(t, tui.NewKeyMap("standard").FullHelp(), "Home/End")
}
