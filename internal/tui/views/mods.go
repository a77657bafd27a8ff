package views

import (
	"fmt"

	"penumbra/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ModRow is one line of the mod list
type ModRow struct {
	Name      string
	Enabled   bool
	Priority  domain.Priority
	Groups    int
	Conflicts int  // Other mods this one collides with
	Unsolved  bool // At least one collision is an equal-priority tie
}

// ToggleModMsg is sent to enable or disable a mod
type ToggleModMsg struct {
	Name    string
	Enabled bool // Requested state
}

// PriorityMsg is sent to change a mod's priority
type PriorityMsg struct {
	Name     string
	Priority domain.Priority // Requested priority
}

// OpenGroupsMsg is sent to edit a mod's option groups
type OpenGroupsMsg struct {
	Name string
}

// Mods is the mod list of the active collection
type Mods struct {
	collection string
	rows       []ModRow
	selected   int
	width      int
	height     int
}

// NewMods creates a new mod list view
func NewMods(collection string, rows []ModRow) Mods {
	return Mods{
		collection: collection,
		rows:       rows,
		width:      80,
		height:     24,
	}
}

// Selected returns the currently selected index
func (m Mods) Selected() int {
	return m.selected
}

// ModCount returns the number of listed mods
func (m Mods) ModCount() int {
	return len(m.rows)
}

// SelectedMod returns the currently selected row
func (m Mods) SelectedMod() *ModRow {
	if len(m.rows) == 0 || m.selected >= len(m.rows) {
		return nil
	}
	return &m.rows[m.selected]
}

// SetRows replaces the listed mods, keeping the cursor on the same mod
// when it is still present.
func (m Mods) SetRows(collection string, rows []ModRow) Mods {
	var current string
	if sel := m.SelectedMod(); sel != nil {
		current = sel.Name
	}
	m.collection = collection
	m.rows = rows
	m.selected = 0
	for i, r := range rows {
		if r.Name == current {
			m.selected = i
			break
		}
	}
	return m
}

// Init implements tea.Model
func (m Mods) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Mods) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Mods) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	mod := m.rows[m.selected]

	switch msg.String() {
	case "up", "k":
		m.selected--
		if m.selected < 0 {
			m.selected = len(m.rows) - 1
		}
		return m, nil

	case "down", "j":
		m.selected++
		if m.selected >= len(m.rows) {
			m.selected = 0
		}
		return m, nil

	case " ":
		return m, func() tea.Msg {
			return ToggleModMsg{Name: mod.Name, Enabled: !mod.Enabled}
		}

	case "+", "=", "K":
		return m, func() tea.Msg {
			return PriorityMsg{Name: mod.Name, Priority: mod.Priority + 1}
		}

	case "-", "_", "J":
		return m, func() tea.Msg {
			return PriorityMsg{Name: mod.Name, Priority: mod.Priority - 1}
		}

	case "enter":
		if mod.Groups == 0 {
			return m, nil
		}
		return m, func() tea.Msg {
			return OpenGroupsMsg{Name: mod.Name}
		}

	case "home", "g":
		m.selected = 0
		return m, nil

	case "end", "G":
		m.selected = len(m.rows) - 1
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Mods) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	disabledStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("241"))

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	output := titleStyle.Render("Mods") + "\n"
	output += infoStyle.Render(fmt.Sprintf("Collection: %s", m.collection)) + "\n\n"

	if len(m.rows) == 0 {
		output += itemStyle.Render("No mods found in the mod directory.") + "\n"
		return output
	}

	for i, mod := range m.rows {
		cursor := "  "
		style := itemStyle
		if i == m.selected {
			cursor = "▸ "
			style = selectedStyle
		} else if !mod.Enabled {
			style = disabledStyle
		}

		status := "[✓]"
		if !mod.Enabled {
			status = "[ ]"
		}

		line := fmt.Sprintf("%s%s %4d  %s", cursor, status, mod.Priority, mod.Name)
		if mod.Conflicts > 0 {
			mark := fmt.Sprintf(" (%d)", mod.Conflicts)
			if mod.Unsolved {
				mark = " !" + mark
			}
			line += warnStyle.Render(mark)
		}
		output += style.Render(line) + "\n"
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	output += helpStyle.Render("↑/↓: navigate  space: toggle  +/-: priority  enter: options")

	return output
}
