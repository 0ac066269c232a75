package botwizard

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/quantumweb/botstudio/internal/tui/theme"
)

// ButtonID identifies a wizard navigation button.
type ButtonID int

const (
	ButtonNone ButtonID = iota
	ButtonBack
	ButtonNext
	ButtonCancel
	ButtonFinish
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Enabled
	ButtonDisabled                    // Grayed out, skipped by focus cycling
)

// Button is a single button in the bar.
type Button struct {
	ID    ButtonID
	Label string
	State ButtonState
}

// ButtonBar manages a horizontal set of buttons with focus tracking.
// focusIdx of -1 means no button has focus.
type ButtonBar struct {
	buttons  []Button
	width    int
	focusIdx int
}

// NewButtonBar creates a button bar. No button is focused initially.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons:  buttons,
		width:    60,
		focusIdx: -1,
	}
}

// SetWidth updates the centering width for the bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// SetEnabled toggles a button between normal and disabled. Disabling the
// focused button drops focus to the next enabled one.
func (b *ButtonBar) SetEnabled(id ButtonID, enabled bool) {
	for i := range b.buttons {
		if b.buttons[i].ID != id {
			continue
		}
		if enabled {
			b.buttons[i].State = ButtonNormal
		} else {
			b.buttons[i].State = ButtonDisabled
			if b.focusIdx == i {
				if !b.FocusNext() {
					b.focusIdx = -1
				}
			}
		}
	}
}

// FocusFirst focuses the first enabled button.
func (b *ButtonBar) FocusFirst() {
	for i := range b.buttons {
		if b.buttons[i].State != ButtonDisabled {
			b.focusIdx = i
			return
		}
	}
	b.focusIdx = -1
}

// FocusLast focuses the last enabled button.
func (b *ButtonBar) FocusLast() {
	for i := len(b.buttons) - 1; i >= 0; i-- {
		if b.buttons[i].State != ButtonDisabled {
			b.focusIdx = i
			return
		}
	}
	b.focusIdx = -1
}

// FocusNext advances focus to the next enabled button. Returns false when
// focus runs off the end of the bar (caller hands focus back to content).
func (b *ButtonBar) FocusNext() bool {
	for i := b.focusIdx + 1; i < len(b.buttons); i++ {
		if b.buttons[i].State != ButtonDisabled {
			b.focusIdx = i
			return true
		}
	}
	return false
}

// FocusPrev moves focus to the previous enabled button. Returns false when
// focus runs off the front of the bar.
func (b *ButtonBar) FocusPrev() bool {
	for i := b.focusIdx - 1; i >= 0; i-- {
		if b.buttons[i].State != ButtonDisabled {
			b.focusIdx = i
			return true
		}
	}
	return false
}

// FocusedButton returns the ID of the focused button, or ButtonNone.
func (b *ButtonBar) FocusedButton() ButtonID {
	if b.focusIdx < 0 || b.focusIdx >= len(b.buttons) {
		return ButtonNone
	}
	return b.buttons[b.focusIdx].ID
}

// Blur clears button focus.
func (b *ButtonBar) Blur() {
	b.focusIdx = -1
}

// Render renders the button bar centered within its width.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	t := theme.Current()

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgBase)).
		Background(lipgloss.Color(t.BgSurface0)).
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	disabledStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgMuted)).
		Background(lipgloss.Color(t.BgMantle)).
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	focusedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.BgBase)).
		Background(lipgloss.Color(t.Primary)).
		Bold(true).
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	var rendered []string
	for i, btn := range b.buttons {
		switch {
		case i == b.focusIdx:
			rendered = append(rendered, focusedStyle.Render(btn.Label))
		case btn.State == ButtonDisabled:
			rendered = append(rendered, disabledStyle.Render(btn.Label))
		default:
			rendered = append(rendered, normalStyle.Render(btn.Label))
		}
	}

	result := strings.Join(rendered, "")
	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, result)
}
