package watch

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - charging, ok states
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors
	WarningColor = lipgloss.Color("#FFA500") // Orange - waiting states
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Shared styles for the watch dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	hostStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	chargingStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	waitingStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// carStateStyle picks a style for a decoded car state value
func carStateStyle(state string) lipgloss.Style {
	switch state {
	case "Charging":
		return chargingStyle
	case "WaitCar", "Complete":
		return waitingStyle
	case "Error", "Unknown/Error":
		return errorStyle
	default:
		return valueStyle
	}
}
