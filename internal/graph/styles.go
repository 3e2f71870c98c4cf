package graph

import "github.com/charmbracelet/lipgloss"

// Grapher color palette. ANSI-16 colors keep the display usable over SSH
// sessions and in basic terminal emulators.
const (
	ColorHealthy  = lipgloss.Color("2") // green
	ColorWarning  = lipgloss.Color("3") // yellow
	ColorCritical = lipgloss.Color("1") // red
	ColorAccent   = lipgloss.Color("6") // cyan
	ColorMuted    = lipgloss.Color("8") // gray
	ColorPrimary  = lipgloss.Color("7") // white/default
)

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	AxisStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)
)

// MetricColor returns the severity color for a percentage value.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}
