// Package styles provides shared lipgloss styles for the CLI and REPL.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
)

// Banner ASCII art for the REPL header.
const Banner = `
 ╔═╗╔╗ ╔═╗╔═╗╦ ╦╔═╗
 ╠═╣╠╩╗╠═╣║  ║ ║╚═╗
 ╩ ╩╚═╝╩ ╩╚═╝╚═╝╚═╝`

// BannerStyle styles the ASCII art banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// PromptStyle styles the REPL input prompt.
var PromptStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// ExpressionStyle styles the echoed expression next to a result.
var ExpressionStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ResultStyle styles calculation results.
var ResultStyle = lipgloss.NewStyle().
	Foreground(ColorGreen).
	Bold(true)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// FormTheme returns the huh theme used by confirmation prompts.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorBlue).Foreground(ColorWhite)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorGray)
	return t
}
