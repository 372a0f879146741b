package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorPrimary = lipgloss.Color("#00BFFF") // Deep sky blue
	colorDanger  = lipgloss.Color("#FF6B6B") // Red for errors
	colorWarning = lipgloss.Color("#FFD93D") // Yellow for pending work
	colorSuccess = lipgloss.Color("#6BCF7F") // Green
	colorMuted   = lipgloss.Color("#6C757D") // Gray
	colorBorder  = lipgloss.Color("#4A90E2") // Border blue
	colorChart   = lipgloss.Color("#87CEEB") // Sky blue for the tide line

	// Title styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// Content styles
	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// Form styles
	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	formBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	// Exposure mark styles
	exposedStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	notExposedStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	// Help text style
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 0)

	// Utility styles
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// Section header styles
	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Padding(0, 1).
				MarginTop(1)

	// Chart styles
	chartLineStyle = lipgloss.NewStyle().
			Foreground(colorChart)

	chartAxisStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	chartLabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// exposureStyle picks the render style for a mark value
func exposureStyle(status string) lipgloss.Style {
	switch status {
	case "Exposed":
		return exposedStyle
	case "Not Exposed":
		return notExposedStyle
	default:
		return mutedStyle
	}
}
