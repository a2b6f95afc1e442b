package dashboard

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the dashboard.
var (
	colorCyan   = lipgloss.Color("#00FFFF")
	colorGreen  = lipgloss.Color("#00FF00")
	colorYellow = lipgloss.Color("#FFFF00")
	colorRed    = lipgloss.Color("#FF0000")
	colorGray   = lipgloss.Color("#666666")
	colorWhite  = lipgloss.Color("#FFFFFF")
)

// Base styles reused across sections.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	stateStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	transcriptStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	summaryStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	dividerStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)
