package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Action is an editor command bound to one or more keys
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionPrev
	ActionNext
	ActionFirst
	ActionLast
	ActionModsTab
	ActionCollectionsTab
	ActionToggle
	ActionRaise
	ActionLower
	ActionOpen
	ActionBack
	ActionNew
	ActionInherit
	ActionDelete
	ActionHelp
	ActionQuit
)

// binding ties an action to its keys. vim keys only apply in vim mode.
type binding struct {
	action  Action
	section string
	keys    []string
	vim     []string
	label   [2]string // Help label for vim and standard mode; empty hides the line
	help    string
}

var bindings = []binding{
	{ActionUp, "Navigation", []string{"up"}, []string{"k"}, [2]string{"j/k", "↑/↓"}, "Move down/up"},
	{ActionDown, "Navigation", []string{"down"}, []string{"j"}, [2]string{}, ""},
	{ActionPrev, "Navigation", []string{"left"}, []string{"h"}, [2]string{"h/l", "←/→"}, "Previous/next option"},
	{ActionNext, "Navigation", []string{"right"}, []string{"l"}, [2]string{}, ""},
	{ActionFirst, "Navigation", []string{"home"}, []string{"g"}, [2]string{"g/G", "Home/End"}, "Go to first/last item"},
	{ActionLast, "Navigation", []string{"end"}, []string{"G"}, [2]string{}, ""},
	{ActionModsTab, "Navigation", []string{"1"}, nil, [2]string{"1/2", "1/2"}, "Mods/Collections"},
	{ActionCollectionsTab, "Navigation", []string{"2"}, nil, [2]string{}, ""},

	{ActionToggle, "Mods", []string{" "}, nil, [2]string{"space", "Space"}, "Enable/disable, or select an option"},
	{ActionRaise, "Mods", []string{"+", "="}, []string{"K"}, [2]string{"+/-", "+/-"}, "Raise/lower priority"},
	{ActionLower, "Mods", []string{"-", "_"}, []string{"J"}, [2]string{}, ""},
	{ActionOpen, "Mods", []string{"enter"}, nil, [2]string{"enter", "Enter"}, "Edit option groups, or switch collection"},
	{ActionBack, "Mods", []string{"esc"}, nil, [2]string{"esc", "Esc"}, "Back to mods"},

	{ActionNew, "Collections", []string{"n"}, nil, [2]string{"n", "n"}, "New collection"},
	{ActionInherit, "Collections", []string{"i"}, nil, [2]string{"i", "i"}, "New collection inheriting the selected one"},
	{ActionDelete, "Collections", []string{"d", "delete"}, nil, [2]string{"d", "Delete"}, "Delete collection"},

	{ActionHelp, "General", []string{"?"}, nil, [2]string{"?", "?"}, "Toggle help"},
	{ActionQuit, "General", []string{"q", "ctrl+c"}, nil, [2]string{"q", "q"}, "Quit"},
}

// KeyMap resolves key presses to actions for one keybinding mode
type KeyMap struct {
	mode    string
	actions map[string]Action
}

// NewKeyMap creates a new keymap for the given mode
func NewKeyMap(mode string) *KeyMap {
	if mode == "" {
		mode = "vim"
	}
	k := &KeyMap{mode: mode, actions: make(map[string]Action)}
	for _, b := range bindings {
		for _, key := range b.keys {
			k.actions[key] = b.action
		}
		if k.vim() {
			for _, key := range b.vim {
				k.actions[key] = b.action
			}
		}
	}
	return k
}

func (k *KeyMap) vim() bool {
	return k.mode == "vim"
}

// Mode returns the current keybinding mode
func (k *KeyMap) Mode() string {
	return k.mode
}

// Action returns the action bound to msg, or ActionNone
func (k *KeyMap) Action(msg tea.KeyMsg) Action {
	return k.actions[msg.String()]
}

// Is reports whether msg triggers action
func (k *KeyMap) Is(msg tea.KeyMsg, action Action) bool {
	return action != ActionNone && k.Action(msg) == action
}

// NavigationHelp returns help text for navigation keys
func (k *KeyMap) NavigationHelp() string {
	if k.vim() {
		return "j/k: navigate  h/l: change"
	}
	return "↑/↓: navigate  ←/→: change"
}

// FullHelp returns the help screen, one section per view
func (k *KeyMap) FullHelp() string {
	col := 1
	if k.vim() {
		col = 0
	}

	var b strings.Builder
	section := ""
	for _, bind := range bindings {
		label := bind.label[col]
		if label == "" {
			continue
		}
		if bind.section != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = bind.section
			b.WriteString(section + ":\n")
		}
		fmt.Fprintf(&b, "  %-8s%s\n", label, bind.help)
	}
	return strings.TrimRight(b.String(), "\n")
}
