package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - titles, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - power on
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors
	WarningColor = lipgloss.Color("#FFA500") // Orange - muted, busy
	MutedColor   = lipgloss.Color("#626262") // Gray - labels, standby
	TextColor    = lipgloss.Color("#FFFFFF") // White - values
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
	VolumeBarWidth   = 30  // Cells in the volume bar
)

var (
	// TitleStyle is for the device name at the top of the remote
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// SubtitleStyle is for the model and API version line
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// LabelStyle is for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(10)

	// ValueStyle is for field values
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	PowerOnStyle  = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	StandbyStyle  = lipgloss.NewStyle().Foreground(MutedColor).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	VolumeFill    = lipgloss.NewStyle().Foreground(PrimaryColor)
	VolumeEmpty   = lipgloss.NewStyle().Foreground(MutedColor)
	ActiveSource  = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	SpinnerStyle  = lipgloss.NewStyle().Foreground(PrimaryColor)
	StatusStyle   = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
	ErrorLine     = lipgloss.NewStyle().Foreground(ErrorColor)
	ErrorTitle    = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	HintItemStyle = lipgloss.NewStyle().Foreground(MutedColor)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
)

// PanelStyle returns the bordered box the remote is drawn in
func PanelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Padding(0, 1)
}

// ErrorBoxStyle returns the border style for error boxes
func ErrorBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Width(width - 2).
		Padding(1, 2)
}

// ClampWidth limits a terminal width to the supported range
func ClampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return ClampWidth(width)
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
