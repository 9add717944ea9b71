package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/courtside-app/courtside/internal/realtime"
	"github.com/courtside-app/courtside/internal/util"
)

// DefaultRefreshInterval is how often the dashboard polls the coordinator.
const DefaultRefreshInterval = 250 * time.Millisecond

// Source is the coordinator view the dashboard needs.
type Source interface {
	Status() realtime.Status
	Snapshot() []realtime.ActiveInfo
}

// tickMsg is sent periodically to refresh the dashboard
type tickMsg time.Time

// Model is the bubbletea model of the dashboard.
type Model struct {
	source   Source
	feed     *Feed
	title    string
	interval time.Duration
	now      func() time.Time

	status realtime.Status
	active []realtime.ActiveInfo
	width  int
}

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the header text.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithRefreshInterval sets the polling interval.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// New creates a dashboard over source. feed may be nil.
func New(source Source, feed *Feed, opts ...Option) Model {
	m := Model{
		source:   source,
		feed:     feed,
		title:    "courtside",
		interval: DefaultRefreshInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles ticks, resizes and quit keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) refresh() {
	m.status = m.source.Status()
	m.active = m.source.Snapshot()
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	b.WriteString(panelStyle.Render(m.renderActive()))
	b.WriteString("\n")
	if m.feed != nil {
		b.WriteString(panelStyle.Render(m.renderEvents()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q to quit"))
	return b.String()
}

func (m Model) renderStatus() string {
	s := m.status
	parts := []string{
		labelStyle.Render("active ") + countStyle.Render(fmt.Sprint(s.ActiveCount)),
		labelStyle.Render("queued ") + countStyle.Render(fmt.Sprint(s.QueuedCount)),
		labelStyle.Render("retrying ") + countStyle.Render(fmt.Sprint(s.RetryingCount)),
	}
	if s.IsDraining {
		parts = append(parts, drainingStyle.Render("draining"))
	} else {
		parts = append(parts, idleStyle.Render("idle"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderActive() string {
	if len(m.active) == 0 {
		return labelStyle.Render("no active subscriptions")
	}

	rows := []string{headerStyle.Render(fmt.Sprintf("%-14s %-18s %8s %10s", "SCOPE", "TOPIC", "CHANGES", "UP"))}
	now := m.now()
	for _, a := range m.active {
		up := now.Sub(a.AdmittedAt).Truncate(time.Second)
		rows = append(rows, fmt.Sprintf("%s %s %8d %10s",
			util.PadRight(a.Scope, 14), util.PadRight(a.Topic, 18), a.Changes, up))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderEvents() string {
	events := m.feed.Events()
	if len(events) == 0 {
		return labelStyle.Render("no events yet")
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		line := e.Timestamp().Format("15:04:05") + " " + Describe(e)
		if m.width > 8 {
			line = util.Truncate(line, m.width-6)
		}
		lines = append(lines, eventStyle(e).Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
