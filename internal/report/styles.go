// Package report renders comparisons, previews and build summaries as text
// for the terminal.
package report

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	colorTitle   = lipgloss.Color("#2196F3")
	colorFirst   = lipgloss.Color("#e57373")
	colorSecond  = lipgloss.Color("#4db6ac")
	colorSame    = lipgloss.Color("#8BC34A")
	colorWarning = lipgloss.Color("#FFC107")
	colorMuted   = lipgloss.Color("#6c7a89")
)

// Styles holds the lipgloss styles used by a Renderer.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Key     lipgloss.Style
	First   lipgloss.Style
	Second  lipgloss.Style
	Same    lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the colored styles used on a terminal. lipgloss
// drops the colors when the output is not a TTY.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
		Section: lipgloss.NewStyle().Bold(true),
		Key:     lipgloss.NewStyle(),
		First:   lipgloss.NewStyle().Foreground(colorFirst),
		Second:  lipgloss.NewStyle().Foreground(colorSecond),
		Same:    lipgloss.NewStyle().Foreground(colorSame),
		Warning: lipgloss.NewStyle().Foreground(colorWarning),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Section: plain,
		Key:     plain,
		First:   plain,
		Second:  plain,
		Same:    plain,
		Warning: plain,
		Muted:   plain,
	}
}
