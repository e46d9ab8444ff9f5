package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/smantzavinos/tally/pkg/model"
)

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor

	// Counter card variants
	Blue   lipgloss.AdaptiveColor
	Green  lipgloss.AdaptiveColor
	Purple lipgloss.AdaptiveColor
	Red    lipgloss.AdaptiveColor
	Orange lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style
	Button   lipgloss.Style
	Disabled lipgloss.Style
	Status   lipgloss.Style
	Overlay  lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#999999", Dark: "#BFBFBF"}, // Dim
		Danger:    lipgloss.AdaptiveColor{Light: "#D80000", Dark: "#FF5555"},
		Success:   lipgloss.AdaptiveColor{Light: "#00A800", Dark: "#50FA7B"},

		Blue:   lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"},
		Green:  lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"},
		Purple: lipgloss.AdaptiveColor{Light: "#7E22CE", Dark: "#C084FC"},
		Red:    lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
		Orange: lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"},

		Border:    lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#44475A"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Button = r.NewStyle().
		Background(t.Highlight).
		Foreground(t.Base.GetForeground()).
		Padding(0, 1)

	t.Disabled = r.NewStyle().
		Foreground(t.Secondary).
		Padding(0, 1)

	t.Status = r.NewStyle().Foreground(t.Subtext)

	t.Overlay = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2)

	return t
}

// StyleColor returns the accent colour of a counter card variant.
func (t Theme) StyleColor(s model.Style) lipgloss.AdaptiveColor {
	switch s {
	case model.StyleBlue:
		return t.Blue
	case model.StyleGreen:
		return t.Green
	case model.StylePurple:
		return t.Purple
	case model.StyleRed:
		return t.Red
	case model.StyleOrange:
		return t.Orange
	default:
		return t.Subtext
	}
}

// Card returns the frame style for a counter card. The active card gets a
// thick border.
func (t Theme) Card(s model.Style, active bool) lipgloss.Style {
	border := lipgloss.RoundedBorder()
	if active {
		border = lipgloss.ThickBorder()
	}
	return t.Renderer.NewStyle().
		Border(border).
		BorderForeground(t.StyleColor(s)).
		Padding(0, 1)
}

// StyleButton renders a style picker entry in the variant's colour.
func (t Theme) StyleButton(s model.Style, selected bool) lipgloss.Style {
	st := t.Renderer.NewStyle().Foreground(t.StyleColor(s)).Padding(0, 1)
	if selected {
		st = st.Reverse(true).Bold(true)
	}
	return st
}

// ApplyThemeMode pins r to a dark or light background. Any other mode leaves
// terminal detection in charge.
func ApplyThemeMode(r *lipgloss.Renderer, mode string) {
	switch mode {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	}
}

// glamourStyle picks the glamour standard style matching the theme mode.
func glamourStyle(mode string, r *lipgloss.Renderer) string {
	switch mode {
	case "dark", "light":
		return mode
	}
	if r != nil && !r.HasDarkBackground() {
		return "light"
	}
	return "dark"
}
