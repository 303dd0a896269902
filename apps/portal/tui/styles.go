package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "22", Dark: "10"})

	crumbStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}).
			Padding(0, 1).
			Width(sidebarWidth)

	navItemStyle       = lipgloss.NewStyle()
	activeNavItemStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	cursorStyle        = lipgloss.NewStyle().Reverse(true)

	contentStyle = lipgloss.NewStyle().Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 2)

	loginStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3)

	toastStyles = map[string]lipgloss.Style{
		"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		"success": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

const sidebarWidth = 22
