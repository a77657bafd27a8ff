package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SwitchCollectionMsg is sent to make a collection the active one
type SwitchCollectionMsg struct {
	Name string
}

// DeleteCollectionMsg is sent to delete a collection
type DeleteCollectionMsg struct {
	Name string
}

// CreateCollectionMsg is sent when a new collection is named
type CreateCollectionMsg struct {
	Name    string
	Inherit string // Parent collection, empty for none
}

// Collections is the collection management view
type Collections struct {
	names     []string
	active    string
	selected  int
	creating  bool
	inherit   string
	nameInput textinput.Model
	width     int
	height    int
}

// NewCollections creates a new collections view
func NewCollections(names []string, active string) Collections {
	ti := textinput.New()
	ti.Placeholder = "Collection name..."
	ti.CharLimit = 50
	ti.Width = 30

	c := Collections{
		names:     names,
		active:    active,
		nameInput: ti,
		width:     80,
		height:    24,
	}
	for i, n := range names {
		if n == active {
			c.selected = i
		}
	}
	return c
}

// Selected returns the currently selected index
func (c Collections) Selected() int {
	return c.selected
}

// CollectionCount returns the number of listed collections
func (c Collections) CollectionCount() int {
	return len(c.names)
}

// IsCreating returns whether the name prompt is open
func (c Collections) IsCreating() bool {
	return c.creating
}

// SelectedCollection returns the selected collection name, or ""
func (c Collections) SelectedCollection() string {
	if len(c.names) == 0 || c.selected >= len(c.names) {
		return ""
	}
	return c.names[c.selected]
}

// Init implements tea.Model
func (c Collections) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (c Collections) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if c.creating {
			return c.handleCreateMode(msg)
		}
		return c.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		return c, nil
	}

	return c, nil
}

func (c Collections) handleCreateMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		c.creating = false
		c.nameInput.Reset()
		c.nameInput.Blur()
		return c, nil

	case tea.KeyEnter:
		name := c.nameInput.Value()
		if name == "" {
			return c, nil
		}
		inherit := c.inherit
		c.creating = false
		c.nameInput.Reset()
		c.nameInput.Blur()
		return c, func() tea.Msg {
			return CreateCollectionMsg{Name: name, Inherit: inherit}
		}

	default:
		var cmd tea.Cmd
		c.nameInput, cmd = c.nameInput.Update(msg)
		return c, cmd
	}
}

func (c Collections) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if len(c.names) > 0 {
			c.selected--
			if c.selected < 0 {
				c.selected = len(c.names) - 1
			}
		}
		return c, nil

	case "down", "j":
		if len(c.names) > 0 {
			c.selected++
			if c.selected >= len(c.names) {
				c.selected = 0
			}
		}
		return c, nil

	case "enter", " ":
		if name := c.SelectedCollection(); name != "" && name != c.active {
			return c, func() tea.Msg {
				return SwitchCollectionMsg{Name: name}
			}
		}
		return c, nil

	case "n":
		return c.startCreate("")

	case "i":
		if name := c.SelectedCollection(); name != "" {
			return c.startCreate(name)
		}
		return c, nil

	case "d", "delete":
		if name := c.SelectedCollection(); name != "" && name != c.active {
			return c, func() tea.Msg {
				return DeleteCollectionMsg{Name: name}
			}
		}
		return c, nil

	case "home", "g":
		c.selected = 0
		return c, nil

	case "end", "G":
		if len(c.names) > 0 {
			c.selected = len(c.names) - 1
		}
		return c, nil
	}

	return c, nil
}

func (c Collections) startCreate(inherit string) (tea.Model, tea.Cmd) {
	c.creating = true
	c.inherit = inherit
	c.nameInput.Focus()
	return c, textinput.Blink
}

// View implements tea.Model
func (c Collections) View() string {
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

	activeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("82"))

	output := titleStyle.Render("Collections") + "\n\n"

	if c.creating {
		prompt := "New collection name: "
		if c.inherit != "" {
			prompt = fmt.Sprintf("New collection inheriting %s: ", c.inherit)
		}
		output += prompt + c.nameInput.View() + "\n\n"
		output += infoStyle.Render("enter: create  esc: cancel")
		return output
	}

	if len(c.names) == 0 {
		output += itemStyle.Render("No collections stored.") + "\n\n"
		output += infoStyle.Render("Press 'n' to create a new collection.") + "\n"
		return output
	}

	for i, name := range c.names {
		cursor := "  "
		style := itemStyle
		if i == c.selected {
			cursor = "▸ "
			style = selectedStyle
		}

		status := ""
		if name == c.active {
			status = activeStyle.Render(" [active]")
		}
		output += style.Render(fmt.Sprintf("%s%s%s", cursor, name, status)) + "\n"
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	output += helpStyle.Render("enter: switch  n: new  i: new inheriting  d: delete")

	return output
}
