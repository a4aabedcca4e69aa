// Package view renders storefront data for the terminal.
package view

import "github.com/charmbracelet/lipgloss"

var (
	Accent      = lipgloss.Color("#FF7A59")
	Muted       = lipgloss.Color("#8A8F98")
	Success     = lipgloss.Color("#4CAF50")
	Destructive = lipgloss.Color("#E53935")

	titleStyle     = lipgloss.NewStyle().Bold(true)
	priceStyle     = lipgloss.NewStyle().Bold(true)
	salePriceStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	originalStyle  = lipgloss.NewStyle().Strikethrough(true).Foreground(Muted)
	discountStyle  = lipgloss.NewStyle().Foreground(Accent)
	mutedStyle     = lipgloss.NewStyle().Foreground(Muted)
	unavailable    = lipgloss.NewStyle().Foreground(Destructive).Italic(true)
	badgeStyle     = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF")).Background(Accent)
	okStyle        = lipgloss.NewStyle().Foreground(Success)
	errorStyle     = lipgloss.NewStyle().Foreground(Destructive).Bold(true)
)

// Error formats a failure for the user.
func Error(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

func OK(msg string) string {
	return okStyle.Render("✓ " + msg)
}
