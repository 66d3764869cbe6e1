package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText     = lipgloss.Color("#cdd6f4")
	colorSubtext  = lipgloss.Color("#a6adc8")
	colorSurface  = lipgloss.Color("#45475a")
	colorAccent   = lipgloss.Color("#74c7ec")
	colorRunning  = lipgloss.Color("#a6e3a1")
	colorWarning  = lipgloss.Color("#fab387")
	colorSelected = lipgloss.Color("#b4befe")

	appStyle = lipgloss.NewStyle().Padding(1, 2)

	headerStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1e1e2e")).
			Background(colorRunning).
			Bold(true).
			Padding(0, 1)

	rowStyle      = lipgloss.NewStyle().Foreground(colorText)
	selectedStyle = lipgloss.NewStyle().Foreground(colorSelected).Bold(true)
	runningStyle  = lipgloss.NewStyle().Foreground(colorRunning).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorSubtext)
	errorStyle    = lipgloss.NewStyle().Foreground(colorWarning)

	listStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface).
			Padding(0, 1)
)
