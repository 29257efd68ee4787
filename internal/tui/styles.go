package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#FF6B6B")
	secondaryColor = lipgloss.Color("#4ECDC4")
	accentColor    = lipgloss.Color("#FFE66D")
	mutedColor     = lipgloss.Color("#6C757D")
	successColor   = lipgloss.Color("#2ECC71")
	errorColor     = lipgloss.Color("#E74C3C")
	warnColor      = lipgloss.Color("#F39C12")
	fgColor        = lipgloss.Color("#EAEAEA")

	// Header
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	// Event list
	eventListStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	selectedEventStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#2D2D44")).
				Foreground(accentColor).
				Bold(true)

	// Delivery state colors
	stateActiveStyle = lipgloss.NewStyle().
				Foreground(successColor)

	stateFailedStyle = lipgloss.NewStyle().
				Foreground(errorColor)

	stateRetryStyle = lipgloss.NewStyle().
			Foreground(warnColor)

	// Detail panel
	detailPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(1)

	fieldNameStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	dividerStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// Help bar
	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	helpCategoryStyle = lipgloss.NewStyle().
				Foreground(secondaryColor).
				Bold(true)

	helpOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(secondaryColor).
				Padding(1, 2)

	// Utility styles
	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	confirmationStyle = lipgloss.NewStyle().
				Foreground(successColor)

	// JSON syntax highlighting
	jsonKeyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	jsonStringStyle = lipgloss.NewStyle().
			Foreground(successColor)

	jsonNumberStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	jsonBoolStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	jsonNullStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// stateStyle picks the list/detail color for a delivery state.
func stateStyle(state string) lipgloss.Style {
	switch normalizeState(state) {
	case "active", "success", "delivered":
		return stateActiveStyle
	case "failed", "error", "dead":
		return stateFailedStyle
	case "retry", "pending", "queued":
		return stateRetryStyle
	}
	return lipgloss.NewStyle().Foreground(fgColor)
}
