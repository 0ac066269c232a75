package theme

import "charm.land/lipgloss/v2"

// Styles contains pre-built lipgloss styles shared across the TUI.
type Styles struct {
	HeaderTitle  lipgloss.Style
	SectionTitle lipgloss.Style
	Hint         lipgloss.Style
	ErrorText    lipgloss.Style
	SuccessText  lipgloss.Style
}
