package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reb0und/sringbuf/pkg/ringbuf"
)

// Theme defines the color scheme for table output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
	Alert   lipgloss.Color // Evictions and failures
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Alert:   lipgloss.Color("#ff5f5f"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Cell   lipgloss.Style
	Empty  lipgloss.Style
	Cursor lipgloss.Style
	Alert  lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Cell:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		Empty:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Dim).Foreground(t.Dim).Padding(0, 1),
		Cursor: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Alert:  lipgloss.NewStyle().Bold(true).Foreground(t.Alert),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// PlainStyles returns bordered styles without any color.
func PlainStyles() Styles {
	box := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	return Styles{
		Cell:  box,
		Empty: box,
	}
}

// RenderState draws the slots of a ring buffer state side by side, with the
// read (R) and write (W) cursors marked under their slots.
func RenderState[T any](s ringbuf.State[T], st Styles) string {
	width := 1
	for _, slot := range s.Slots {
		width = max(width, lipgloss.Width(slot.String()))
	}

	cells := make([]string, 0, len(s.Slots))
	for i, slot := range s.Slots {
		text := slot.String()
		text += strings.Repeat(" ", width-lipgloss.Width(text))

		style := st.Cell
		if !slot.Occupied {
			style = st.Empty
		}
		box := style.Render(text)

		var marker string
		if i == s.ReadIndex {
			marker += "R"
		}
		if i == s.WriteIndex {
			marker += "W"
		}
		if marker == "" {
			marker = " "
		}
		marker = st.Cursor.Render(marker)

		cells = append(cells, lipgloss.JoinVertical(lipgloss.Center, box, marker))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
