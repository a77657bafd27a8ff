package views

import (
	"fmt"

	"penumbra/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// GroupRow is one option group of the edited mod
type GroupRow struct {
	Name    string
	Type    domain.GroupType
	Options []string
	Setting domain.Setting
}

// SetGroupMsg is sent when a group selection is changed
type SetGroupMsg struct {
	Mod     string
	Group   string
	Setting domain.Setting
}

// BackMsg is sent to leave the group editor
type BackMsg struct{}

// Groups edits the option selections of one mod
type Groups struct {
	mod      string
	rows     []GroupRow
	selected int
	option   int // Option cursor inside a multi group
	width    int
	height   int
}

// NewGroups creates a new group editor for mod
func NewGroups(mod string, rows []GroupRow) Groups {
	return Groups{
		mod:    mod,
		rows:   rows,
		width:  80,
		height: 24,
	}
}

// Mod returns the edited mod's name
func (g Groups) Mod() string {
	return g.mod
}

// Selected returns the currently selected group index
func (g Groups) Selected() int {
	return g.selected
}

// OptionCursor returns the option cursor of the selected multi group
func (g Groups) OptionCursor() int {
	return g.option
}

// SetRows replaces the groups after the selection was applied
func (g Groups) SetRows(rows []GroupRow) Groups {
	g.rows = rows
	if g.selected >= len(rows) {
		g.selected = 0
		g.option = 0
	}
	return g
}

// Init implements tea.Model
func (g Groups) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (g Groups) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return g.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
		return g, nil
	}

	return g, nil
}

func (g Groups) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return g, func() tea.Msg { return BackMsg{} }
	}
	if len(g.rows) == 0 {
		return g, nil
	}

	switch msg.String() {
	case "up", "k":
		g.selected--
		if g.selected < 0 {
			g.selected = len(g.rows) - 1
		}
		g.option = 0
		return g, nil

	case "down", "j":
		g.selected++
		if g.selected >= len(g.rows) {
			g.selected = 0
		}
		g.option = 0
		return g, nil

	case "right", "l":
		return g.step(1)

	case "left", "h":
		return g.step(-1)

	case "enter", " ":
		row := g.rows[g.selected]
		if row.Type == domain.GroupMulti {
			return g, g.emit(row.Setting ^ domain.SettingMulti(g.option))
		}
		return g.step(1)
	}

	return g, nil
}

// step cycles a single group's selection, or moves the option cursor of a
// multi group.
func (g Groups) step(delta int) (tea.Model, tea.Cmd) {
	row := g.rows[g.selected]
	n := len(row.Options)
	if n == 0 {
		return g, nil
	}
	if row.Type == domain.GroupMulti {
		g.option = (g.option + delta + n) % n
		return g, nil
	}
	next := (row.Setting.AsIndex() + delta + n) % n
	return g, g.emit(domain.Setting(next))
}

func (g Groups) emit(setting domain.Setting) tea.Cmd {
	msg := SetGroupMsg{Mod: g.mod, Group: g.rows[g.selected].Name, Setting: setting}
	return func() tea.Msg { return msg }
}

// View implements tea.Model
func (g Groups) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	typeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("82"))

	optionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	selectedOptionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	output := titleStyle.Render("Options: "+g.mod) + "\n\n"

	if len(g.rows) == 0 {
		output += itemStyle.Render("This mod has no option groups.") + "\n"
		return output
	}

	for i, row := range g.rows {
		cursor := "  "
		style := itemStyle
		if i == g.selected {
			cursor = "▸ "
			style = selectedStyle
		}

		line := fmt.Sprintf("%s%s %s: %s", cursor, row.Name, typeStyle.Render("("+row.Type.String()+")"), valueStyle.Render(summary(row)))
		output += style.Render(line) + "\n"

		if i == g.selected {
			optionsLine := "    "
			for j, opt := range row.Options {
				switch {
				case row.Type == domain.GroupMulti:
					box := "[ ]"
					if row.Setting.HasFlag(j) {
						box = "[x]"
					}
					if j == g.option {
						optionsLine += selectedOptionStyle.Render(box+" "+opt) + " "
					} else {
						optionsLine += optionStyle.Render(box+" "+opt) + " "
					}
				case j == row.Setting.AsIndex():
					optionsLine += selectedOptionStyle.Render("["+opt+"]") + " "
				default:
					optionsLine += optionStyle.Render(" "+opt+" ") + " "
				}
			}
			output += optionsLine + "\n"
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	output += helpStyle.Render("↑/↓: group  ←/→: option  space: select  esc: back")

	return output
}

func summary(row GroupRow) string {
	if row.Type != domain.GroupMulti {
		if idx := row.Setting.AsIndex(); idx >= 0 && idx < len(row.Options) {
			return row.Options[idx]
		}
		return "none"
	}
	n := 0
	for j := range row.Options {
		if row.Setting.HasFlag(j) {
			n++
		}
	}
	return fmt.Sprintf("%d of %d", n, len(row.Options))
}
