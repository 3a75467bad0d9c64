package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/registry"
	"github.com/vovakirdan/tickloop/internal/storage"
)

// History is the read side of the session store used by the screens.
type History interface {
	RecentSessions(simID string, limit int) ([]storage.Session, error)
	Summary(simID string) (*storage.SimSummary, error)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	presetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
)

// MenuModel is the Bubble Tea model for the sim picker menu.
type MenuModel struct {
	items       []registry.SimInfo
	cursor      int
	presets     []config.Preset // First entry is "" for the loaded config
	preset      int
	summaries   map[string]storage.SimSummary
	width       int
	height      int
	keys        MenuKeyMap
	help        help.Model
	quitting    bool
	selected    *registry.SimInfo // Set when user selects a sim
	openHistory bool
}

// NewMenuModel creates a new menu model. store may be nil.
// preset preselects a preset by name.
func NewMenuModel(store History, preset string, width, height int) MenuModel {
	presets := append([]config.Preset{""}, config.Presets()...)
	m := MenuModel{
		items:     registry.List(),
		presets:   presets,
		summaries: make(map[string]storage.SimSummary),
		width:     width,
		height:    height,
		keys:      DefaultMenuKeyMap(),
		help:      help.New(),
	}
	for i, p := range presets {
		if string(p) == preset {
			m.preset = i
		}
	}
	if store != nil {
		for _, item := range m.items {
			if sum, err := store.Summary(item.ID); err == nil && sum != nil {
				m.summaries[item.ID] = *sum
			}
		}
	}
	return m
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.NextPreset):
		m.preset = (m.preset + 1) % len(m.presets)

	case key.Matches(msg, m.keys.PrevPreset):
		m.preset = (m.preset + len(m.presets) - 1) % len(m.presets)

	case key.Matches(msg, m.keys.Select):
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start the loop
		}

	case key.Matches(msg, m.keys.History):
		m.openHistory = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("T I C K L O O P"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(dimStyle.Render("Select a sim"), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := "  " + item.Title
		if i == m.cursor {
			line = selectedStyle.Render("> " + item.Title)
		}
		if sum, ok := m.summaries[item.ID]; ok && sum.Sessions > 0 {
			line += dimStyle.Render(fmt.Sprintf("  %d runs, best %d", sum.Sessions, sum.BestScore))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
	if len(m.items) == 0 {
		b.WriteString(centerText(dimStyle.Render("No sims registered."), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("timing  "+presetStyle.Render(presetLabel(m.Preset())), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(dimStyle.Render(m.help.View(m.keys)), m.width))
	b.WriteString("\n")

	return b.String()
}

func presetLabel(p string) string {
	if p == "" {
		return "config"
	}
	return p
}

// Selected returns the selected sim, or nil if none selected.
func (m MenuModel) Selected() *registry.SimInfo {
	return m.selected
}

// Preset returns the chosen preset name, empty for the loaded config.
func (m MenuModel) Preset() string {
	return string(m.presets[m.preset])
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsHistory returns true if user requested the session history.
func (m MenuModel) WantsHistory() bool {
	return m.openHistory
}

// centerText centers text within given width, measuring printable cells.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	SimID        string
	Preset       string
	WantsHistory bool
	Quit         bool
}

// Result extracts the menu outcome from the final model.
func (m MenuModel) Result() MenuResult {
	result := MenuResult{Preset: m.Preset()}
	switch {
	case m.WantsHistory():
		result.WantsHistory = true
	case m.IsQuitting() || m.Selected() == nil:
		result.Quit = true
	default:
		result.SimID = m.Selected().ID
	}
	return result
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(store History, preset string, opts ...tea.ProgramOption) (MenuResult, error) {
	model := NewMenuModel(store, preset, 80, 24)

	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Quit: true}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Quit: true}, nil
	}
	return m.Result(), nil
}
