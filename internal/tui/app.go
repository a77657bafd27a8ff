// Package tui is the interactive collection editor.
package tui

import (
	"fmt"
	"strings"

	"penumbra/internal/core"
	"penumbra/internal/domain"
	"penumbra/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewType represents different screens in the TUI
type ViewType int

const (
	ViewMods ViewType = iota
	ViewCollections
	ViewGroups
)

// NavigateMsg is sent to change views
type NavigateMsg struct {
	View ViewType
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// Backend is what the editor needs from the core service
type Backend interface {
	Mods() []*domain.Mod
	Collection() *domain.Collection
	Cache() *core.CollectionCache
	SetModEnabled(name string, enabled bool) (core.Passes, error)
	SetModPriority(name string, priority domain.Priority) (core.Passes, error)
	SetGroupSetting(name, group string, setting domain.Setting) (core.Passes, error)
	Collections() ([]string, error)
	CreateCollection(name string, inherit ...string) (*domain.Collection, error)
	DeleteCollection(name string) error
	SwitchCollection(name string) error
}

var _ Backend = (*core.Service)(nil)

// App is the main TUI application model
type App struct {
	service     Backend
	keys        *KeyMap
	currentView ViewType
	width       int
	height      int
	err         error
	status      string
	showHelp    bool

	mods        views.Mods
	groups      views.Groups
	collections views.Collections
}

// NewApp creates a new TUI application. service may be nil, which shows
// empty views.
func NewApp(service Backend, keybindings string) App {
	a := App{
		service:     service,
		keys:        NewKeyMap(keybindings),
		currentView: ViewMods,
		width:       80,
		height:      24,
	}
	a.mods = views.NewMods(a.collectionName(), a.modRows())
	a.collections = views.NewCollections(a.collectionNames(), a.collectionName())
	return a
}

// CurrentView returns the current view type
func (a App) CurrentView() ViewType {
	return a.currentView
}

// Status returns the last status line
func (a App) Status() string {
	return a.status
}

// Err returns the last error shown
func (a App) Err() error {
	return a.err
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case NavigateMsg:
		a.currentView = msg.View
		return a, nil

	case ErrorMsg:
		a.err = msg.Err
		return a, nil

	case views.ToggleModMsg:
		return a.apply(msg.Name, func() (core.Passes, error) {
			return a.service.SetModEnabled(msg.Name, msg.Enabled)
		})

	case views.PriorityMsg:
		return a.apply(msg.Name, func() (core.Passes, error) {
			return a.service.SetModPriority(msg.Name, msg.Priority)
		})

	case views.SetGroupMsg:
		return a.apply(msg.Mod, func() (core.Passes, error) {
			return a.service.SetGroupSetting(msg.Mod, msg.Group, msg.Setting)
		})

	case views.OpenGroupsMsg:
		a.groups = views.NewGroups(msg.Name, a.groupRows(msg.Name))
		a.currentView = ViewGroups
		return a, nil

	case views.BackMsg:
		a.currentView = ViewMods
		return a, nil

	case views.SwitchCollectionMsg:
		if err := a.service.SwitchCollection(msg.Name); err != nil {
			a.err = err
			return a, nil
		}
		a.status = "Switched to " + msg.Name
		a.refresh()
		a.currentView = ViewMods
		return a, nil

	case views.CreateCollectionMsg:
		var inherit []string
		if msg.Inherit != "" {
			inherit = append(inherit, msg.Inherit)
		}
		if _, err := a.service.CreateCollection(msg.Name, inherit...); err != nil {
			a.err = err
			return a, nil
		}
		a.status = "Created " + msg.Name
		a.refresh()
		return a, nil

	case views.DeleteCollectionMsg:
		if err := a.service.DeleteCollection(msg.Name); err != nil {
			a.err = err
			return a, nil
		}
		a.status = "Deleted " + msg.Name
		a.refresh()
		return a, nil
	}

	return a.updateCurrentView(msg)
}

// apply runs one settings edit and refreshes the views from the new
// resolution.
func (a App) apply(mod string, edit func() (core.Passes, error)) (tea.Model, tea.Cmd) {
	if a.service == nil {
		return a, nil
	}
	passes, err := edit()
	if err != nil {
		a.err = err
		return a, nil
	}
	a.status = describePasses(mod, passes)
	a.refresh()
	return a, nil
}

func describePasses(mod string, p core.Passes) string {
	var ran []string
	if p.Files {
		ran = append(ran, "files")
	}
	if p.Meta {
		ran = append(ran, "metadata")
	}
	if len(ran) == 0 {
		return mod + ": saved, nothing to recompute"
	}
	return fmt.Sprintf("%s: recomputed %s", mod, strings.Join(ran, " and "))
}

func (a *App) refresh() {
	a.mods = a.mods.SetRows(a.collectionName(), a.modRows())
	a.collections = views.NewCollections(a.collectionNames(), a.collectionName())
	if a.currentView == ViewGroups {
		a.groups = a.groups.SetRows(a.groupRows(a.groups.Mod()))
	}
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.err = nil

	// Text input owns every key while naming a collection
	if a.currentView == ViewCollections && a.collections.IsCreating() {
		return a.updateCurrentView(msg)
	}

	switch a.keys.Action(msg) {
	case ActionQuit:
		return a, tea.Quit

	case ActionHelp:
		a.showHelp = !a.showHelp
		return a, nil

	case ActionModsTab:
		a.currentView = ViewMods
		return a, nil

	case ActionCollectionsTab:
		a.currentView = ViewCollections
		return a, nil
	}

	return a.updateCurrentView(msg)
}

func (a App) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var model tea.Model
	var cmd tea.Cmd

	switch a.currentView {
	case ViewMods:
		model, cmd = a.mods.Update(msg)
		a.mods = model.(views.Mods)
	case ViewGroups:
		model, cmd = a.groups.Update(msg)
		a.groups = model.(views.Groups)
	case ViewCollections:
		model, cmd = a.collections.Update(msg)
		a.collections = model.(views.Collections)
	}

	return a, cmd
}

func (a App) collectionName() string {
	if a.service == nil {
		return ""
	}
	return a.service.Collection().Name
}

func (a App) collectionNames() []string {
	if a.service == nil {
		return nil
	}
	names, err := a.service.Collections()
	if err != nil {
		return []string{a.collectionName()}
	}
	return names
}

func (a App) modRows() []views.ModRow {
	if a.service == nil {
		return nil
	}
	collection := a.service.Collection()
	cache := a.service.Cache()

	mods := a.service.Mods()
	rows := make([]views.ModRow, 0, len(mods))
	for _, m := range mods {
		row := views.ModRow{Name: m.Name, Groups: len(m.Groups)}
		if s := collection.ActualSettings(m.Name); s != nil {
			row.Enabled = s.Enabled
			row.Priority = s.Priority
		}
		grouped := core.GroupConflicts(cache.Conflicts(m.Name))
		row.Conflicts = len(grouped)
		for _, c := range grouped {
			if !c.Solved {
				row.Unsolved = true
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (a App) groupRows(name string) []views.GroupRow {
	if a.service == nil {
		return nil
	}
	var mod *domain.Mod
	for _, m := range a.service.Mods() {
		if m.Name == name {
			mod = m
			break
		}
	}
	if mod == nil {
		return nil
	}

	settings := a.service.Collection().ActualSettings(name)
	rows := make([]views.GroupRow, 0, len(mod.Groups))
	for i := range mod.Groups {
		g := &mod.Groups[i]
		row := views.GroupRow{Name: g.Name, Type: g.Type, Setting: g.DefaultSettings}
		if settings != nil {
			row.Setting = g.FixSetting(settings.Setting(g))
		}
		for _, o := range g.Options {
			row.Options = append(row.Options, o.Name)
		}
		rows = append(rows, row)
	}
	return rows
}

// View implements tea.Model
func (a App) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	activeTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	header := titleStyle.Render("penumbra - collection editor")

	tabs := []struct {
		label string
		view  ViewType
	}{{"[1]Mods", ViewMods}, {"[2]Collections", ViewCollections}}
	tabBar := ""
	for _, tab := range tabs {
		active := tab.view == a.currentView || (tab.view == ViewMods && a.currentView == ViewGroups)
		if active {
			tabBar += activeTabStyle.Render(tab.label) + "  "
		} else {
			tabBar += tabStyle.Render(tab.label) + "  "
		}
	}

	content := a.renderCurrentView()
	if a.showHelp {
		content = a.keys.FullHelp()
	}

	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		content += "\n\n" + errStyle.Render(fmt.Sprintf("Error: %v", a.err))
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	footer := footerStyle.Render(a.summary() + "  q: quit  ?: help")

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, tabBar, content, footer)
}

func (a App) renderCurrentView() string {
	switch a.currentView {
	case ViewMods:
		list := a.mods.View()
		if a.service == nil {
			return list
		}
		var name string
		if sel := a.mods.SelectedMod(); sel != nil {
			name = sel.Name
		}
		pane := views.RenderConflicts(name, core.GroupConflicts(a.service.Cache().Conflicts(name)), a.paneWidth())
		return lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", pane)

	case ViewGroups:
		return a.groups.View()

	case ViewCollections:
		return a.collections.View()

	default:
		return "Unknown view"
	}
}

func (a App) paneWidth() int {
	if w := a.width / 3; w > 24 {
		return w
	}
	return 24
}

func (a App) summary() string {
	if a.service == nil {
		return "no collection loaded"
	}
	cache := a.service.Cache()
	line := fmt.Sprintf("%d files  %d manipulations  %d conflicts",
		cache.ResolvedCount(), cache.Overlay().Len(), len(cache.ConflictRecords()))
	if a.status != "" {
		line = a.status + "  |  " + line
	}
	return line
}

// Run starts the TUI application
func Run(service Backend, keybindings string) error {
	app := NewApp(service, keybindings)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
