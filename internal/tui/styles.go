package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	greenColor   = lipgloss.Color("#10B981") // Green
	amberColor   = lipgloss.Color("#F59E0B") // Amber
	redColor     = lipgloss.Color("#F87171") // Red
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	borderColor  = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	countStyle = lipgloss.NewStyle().
			Bold(true)

	drainingStyle = lipgloss.NewStyle().
			Foreground(amberColor).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(greenColor)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(mutedColor)

	eventGood  = lipgloss.NewStyle().Foreground(greenColor)
	eventWarn  = lipgloss.NewStyle().Foreground(amberColor)
	eventBad   = lipgloss.NewStyle().Foreground(redColor)
	eventQuiet = lipgloss.NewStyle().Foreground(mutedColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)
