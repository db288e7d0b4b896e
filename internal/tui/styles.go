package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colours keep the books readable on light terminals.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#1B5E20", Dark: "#66BB6A"}
	muted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#8A8A8A"}
	faint   = lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#4E4E4E"}
	ink     = lipgloss.AdaptiveColor{Light: "#212121", Dark: "#E0E0E0"}
	good    = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	bad     = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}
	caution = lipgloss.AdaptiveColor{Light: "#E65100", Dark: "#FFB74D"}
	tabBg   = lipgloss.AdaptiveColor{Light: "#E8F5E9", Dark: "#1E2A1F"}
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	subtitleStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent).Background(tabBg).Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 2)
	businessStyle    = lipgloss.NewStyle().Foreground(ink).Bold(true).PaddingLeft(4)

	helpStyle    = lipgloss.NewStyle().Foreground(muted)
	errorStyle   = lipgloss.NewStyle().Foreground(bad).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(good)
	warnStyle    = lipgloss.NewStyle().Foreground(caution)

	// Debit and credit columns.
	debitStyle  = lipgloss.NewStyle().Foreground(good)
	creditStyle = lipgloss.NewStyle().Foreground(bad)

	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(ink).Width(16)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle      = lipgloss.NewStyle().Foreground(faint)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ink).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(faint)

	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(faint).Padding(1, 2)
	hintBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 2)
)
