package tui

import "github.com/charmbracelet/lipgloss"

// Tokyo Night palette.
var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")).Bold(true)
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7"))
	heldStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5"))
	cleanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	minorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	moderateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff9e64"))
	severeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
	recordStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#414868")).
			Padding(0, 1)
)

func gradeStyle(grade string) lipgloss.Style {
	switch grade {
	case "EXCELLENT":
		return cleanStyle
	case "GOOD":
		return minorStyle
	case "FAIR":
		return moderateStyle
	default:
		return severeStyle
	}
}
