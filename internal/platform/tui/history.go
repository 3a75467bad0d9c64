package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tickloop/internal/registry"
	"github.com/vovakirdan/tickloop/internal/storage"
)

// maxSessions is the number of sessions loaded per sim.
const maxSessions = 100

// HistoryModel is the Bubble Tea model for the session history screen.
type HistoryModel struct {
	sims      []registry.SimInfo
	simCursor int
	store     History
	sessions  []storage.Session
	summary   storage.SimSummary
	table     table.Model
	help      help.Model
	keys      HistoryKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool // True if user pressed back (not quit)
}

// NewHistoryModel creates a new history model. store may be nil.
func NewHistoryModel(store History, width, height int) HistoryModel {
	m := HistoryModel{
		sims:   registry.List(),
		store:  store,
		keys:   DefaultHistoryKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	if len(m.sims) > 0 {
		m.loadSessions(m.sims[0].ID)
	}
	return m
}

// createTable creates a new table sized to the window.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "When", Width: 13},
		{Title: "Mode", Width: 6},
		{Title: "Preset", Width: 9},
		{Title: "Ticks", Width: 8},
		{Title: "TPS", Width: 6},
		{Title: "FPS", Width: 6},
		{Title: "Score", Width: 6},
		{Title: "Exit", Width: 4},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)), // Leave room for header, summary and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadSessions loads the history of the given sim.
func (m *HistoryModel) loadSessions(simID string) {
	m.sessions = nil
	m.summary = storage.SimSummary{SimID: simID}
	if m.store != nil {
		if sessions, err := m.store.RecentSessions(simID, maxSessions); err == nil {
			m.sessions = sessions
		}
		if sum, err := m.store.Summary(simID); err == nil && sum != nil {
			m.summary = *sum
		}
	}
	m.table.SetRows(SessionRows(m.sessions))
	m.table.GotoTop()
}

// SessionRows formats sessions as table rows.
func SessionRows(sessions []storage.Session) []table.Row {
	rows := make([]table.Row, len(sessions))
	for i, s := range sessions {
		rows[i] = table.Row{
			s.CreatedAt.Local().Format("Jan 02 15:04"),
			s.Mode,
			presetLabel(s.Preset),
			fmt.Sprintf("%d", s.Ticks),
			fmt.Sprintf("%.1f", rate(s.Ticks, s)),
			fmt.Sprintf("%.1f", rate(s.Frames, s)),
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.ExitCode),
		}
	}
	return rows
}

func rate(n uint64, s storage.Session) float64 {
	if s.WallTime <= 0 {
		return 0
	}
	return float64(n) / s.WallTime.Seconds()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextSim):
			if len(m.sims) > 0 {
				m.simCursor = (m.simCursor + 1) % len(m.sims)
				m.loadSessions(m.sims[m.simCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevSim):
			if len(m.sims) > 0 {
				m.simCursor = (m.simCursor + len(m.sims) - 1) % len(m.sims)
				m.loadSessions(m.sims[m.simCursor].ID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.table.SetRows(SessionRows(m.sessions))
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table for scrolling
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	title := "SESSIONS"
	if len(m.sims) > 0 {
		title = fmt.Sprintf("SESSIONS - %s", m.sims[m.simCursor].Title)
	}
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	sum := m.summary
	b.WriteString(centerText(dimStyle.Render(fmt.Sprintf(
		"%d runs  %d ticks  %.1f tps  %.1f fps  best %d",
		sum.Sessions, sum.Ticks, sum.AverageTickRate(), sum.AverageFrameRate(), sum.BestScore,
	)), m.width))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	content := m.table.View()
	if len(m.sessions) == 0 {
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4).
			Render("No sessions recorded yet.\nRun a sim to record one!")
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, boxStyle.Render(content)))

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// RunHistory runs the history screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(store History, opts ...tea.ProgramOption) (goBack bool, err error) {
	model := NewHistoryModel(store, 80, 24)

	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}

	return m.IsGoingBack(), nil
}
