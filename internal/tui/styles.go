package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("212")
	accentColor  = lipgloss.Color("45")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	errorColor   = lipgloss.Color("196")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedColor)

	groupStyle       = lipgloss.NewStyle().Bold(true)
	cursorStyle      = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	selectedRowStyle = lipgloss.NewStyle().Foreground(accentColor)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	totalStyle       = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(mutedColor)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("237"))

	modeBadgeStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(accentColor)

	statusStyle  = lipgloss.NewStyle().Foreground(successColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	spinnerStyle = lipgloss.NewStyle().Foreground(primaryColor)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)
)
