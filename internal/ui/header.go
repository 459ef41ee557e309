package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/streammagic/pkg/streammagic"
)

var (
	cardTitleStyle    = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	cardSubtitleStyle = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
	cardKeyStyle      = lipgloss.NewStyle().Foreground(MutedColor).Width(12)
	cardValueStyle    = lipgloss.NewStyle().Foreground(TextColor)
)

// Field is one labelled line on a Card
type Field struct {
	Key   string
	Value string
}

// Card is a bordered block with a title, a subtitle and labelled fields.
// Fields render in the order given.
type Card struct {
	Title    string  // e.g., "Living Room"
	Subtitle string  // e.g., "CXN (v2) at 192.168.1.20"
	Fields   []Field // e.g., {"API", "1.8"}
	Width    int     // Terminal width for responsive rendering
}

// NewCard creates a card sized to the terminal
func NewCard(title, subtitle string, fields ...Field) *Card {
	return &Card{
		Title:    title,
		Subtitle: subtitle,
		Fields:   fields,
		Width:    GetTerminalWidth(),
	}
}

// DeviceCard renders a device identity
func DeviceCard(info streammagic.Info, host string) *Card {
	return NewCard(info.Name, info.Model+" at "+host,
		Field{"API Version", info.APIVersion},
		Field{"Unit ID", info.UnitID},
		Field{"UDN", info.UDN},
		Field{"Locale", info.Locale},
		Field{"Timezone", info.Timezone},
	)
}

// SetWidth sets the terminal width for responsive rendering
func (c *Card) SetWidth(width int) *Card {
	c.Width = width
	return c
}

// Render returns the styled card as a string
func (c *Card) Render() string {
	width := ClampWidth(c.Width)

	top := cardTitleStyle.Render(strings.ToUpper(c.Title))
	if c.Subtitle != "" {
		top = lipgloss.JoinVertical(lipgloss.Left, top, cardSubtitleStyle.Render(c.Subtitle))
	}

	content := top
	if len(c.Fields) > 0 {
		dividerWidth := width - 6 // border and padding
		if dividerWidth < 10 {
			dividerWidth = 10
		}
		divider := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Render(strings.Repeat("─", dividerWidth))

		lines := make([]string, 0, len(c.Fields))
		for _, f := range c.Fields {
			value := f.Value
			if value == "" {
				value = "-"
			}
			lines = append(lines, cardKeyStyle.Render(f.Key+":")+" "+cardValueStyle.Render(value))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, top, divider, strings.Join(lines, "\n"))
	}

	return PanelStyle(width).Render(content)
}

// String implements fmt.Stringer
func (c *Card) String() string {
	return c.Render()
}
