package ui

import "github.com/charmbracelet/lipgloss"

// Color palette using ANSI color codes for terminal compatibility. The
// snapshot tables are usually read over SSH, so nothing here assumes
// truecolor support.

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

var (
	// HeaderStyle is the inverse-video table header row.
	HeaderStyle = lipgloss.NewStyle().Reverse(true)

	// SectionStyle labels blocks like "Available resources".
	SectionStyle = lipgloss.NewStyle().Bold(true)

	// MutedStyle de-emphasizes secondary text.
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// WarnStyle flags oversubscribed resources.
	WarnStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	// ErrStyle renders per-machine failure notices.
	ErrStyle = lipgloss.NewStyle().Foreground(ColorError)

	// MachineStyle renders per-machine headers in multi-machine mode.
	MachineStyle = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
)
