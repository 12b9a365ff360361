// Package tui provides the BubbleTea-based interactive theme picker.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/shade/internal/client"
	"github.com/jmylchreest/shade/internal/theme"
)

// requestTimeout bounds each host exchange started from the picker.
const requestTimeout = 5 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)
)

// themeItem wraps a theme for the list component.
type themeItem struct {
	info   theme.Info
	active bool
}

func (i themeItem) Title() string {
	title := i.info.Name
	if i.active {
		title += " (active)"
	}
	return title
}

func (i themeItem) Description() string {
	switch {
	case i.info.Bundled && i.info.Restart:
		return "bundled, requires restart"
	case i.info.Bundled:
		return "bundled"
	case i.info.Restart:
		return i.info.Path + " (requires restart)"
	default:
		return i.info.Path
	}
}

func (i themeItem) FilterValue() string {
	return i.info.Name
}

// KeyMap holds the picker key bindings.
type KeyMap struct {
	Activate key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "activate")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type themesLoadedMsg struct {
	themes []theme.Info
	active string
	err    error
}

type activatedMsg struct {
	name string
	err  error
}

// HotReloader re-watches the applied stylesheet after an activation so that
// edits to the theme file show up without another activation round.
type HotReloader interface {
	StartHotReload(ctx context.Context)
	StopHotReload()
}

// Model is the theme picker model.
type Model struct {
	client *client.Client
	reload HotReloader
	list   list.Model
	keys   KeyMap

	active    string
	statusMsg string
	statusErr bool
	ready     bool
}

// New creates a picker over an established client. hr may be nil when hot
// reload is disabled.
func New(c *client.Client, hr HotReloader) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "shade themes"
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)

	return Model{
		client: c,
		reload: hr,
		list:   l,
		keys:   DefaultKeyMap(),
	}
}

// Init starts the initial theme load.
func (m Model) Init() tea.Cmd {
	return m.loadThemes()
}

// loadThemes fetches the installed themes and the active selection.
func (m Model) loadThemes() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		themes, err := c.ListThemes(ctx)
		if err != nil {
			return themesLoadedMsg{err: err}
		}
		info, err := c.ActiveThemeInfo(ctx)
		if err != nil {
			return themesLoadedMsg{err: err}
		}
		return themesLoadedMsg{themes: themes, active: info.Name}
	}
}

// activateTheme asks the host to activate name.
func (m Model) activateTheme(name string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return activatedMsg{name: name, err: c.Activate(ctx, name)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-3)
		m.ready = true
		return m, nil

	case themesLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("failed to load themes: %v", msg.err)
			m.statusErr = true
			return m, nil
		}
		m.active = msg.active
		items := make([]list.Item, 0, len(msg.themes))
		for _, info := range msg.themes {
			items = append(items, themeItem{info: info, active: info.Name == msg.active})
		}
		return m, m.list.SetItems(items)

	case activatedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("activation failed: %v", msg.err)
			m.statusErr = true
			return m, nil
		}
		m.statusMsg = "activated " + msg.name
		m.statusErr = false
		if m.reload != nil {
			// Re-arm the watcher on whatever stylesheet the activation
			// just applied; bundled themes are skipped by the loader.
			m.reload.StartHotReload(context.Background())
		}
		return m, m.loadThemes()

	case tea.KeyMsg:
		// Don't intercept keys while the list is filtering.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadThemes()
		case key.Matches(msg, m.keys.Activate):
			if item, ok := m.list.SelectedItem().(themeItem); ok {
				return m, m.activateTheme(item.info.Name)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the picker.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := titleStyle.Render("shade themes")
	status := ""
	if m.statusMsg != "" {
		if m.statusErr {
			status = errorStyle.Render(m.statusMsg)
		} else {
			status = statusStyle.Render(m.statusMsg)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), status)
}

// Run starts the picker over an established client and blocks until exit.
func Run(c *client.Client, hr HotReloader) error {
	_, err := tea.NewProgram(New(c, hr), tea.WithAltScreen()).Run()
	return err
}
