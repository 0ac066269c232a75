package tui

import (
	"charm.land/lipgloss/v2"
)

// Hint bar styles (Catppuccin Mocha)
var (
	styleHintKey = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bac2de")). // Subtext1
			Bold(true)

	styleHintDesc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a6adc8")) // Subtext0

	styleHintSeparator = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#585b70")) // Surface2
)

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("↑↓", "navegar", "enter", "chatear")
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	var result string
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			result += " " + styleHintSeparator.Render("•") + " "
		}
		result += styleHintKey.Render(pairs[i]) + " " + styleHintDesc.Render(pairs[i+1])
	}

	return result
}

// truncate shortens a string to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max < 2 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
