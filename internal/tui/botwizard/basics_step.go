package botwizard

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quantumweb/botstudio/internal/draft"
	"github.com/quantumweb/botstudio/internal/tui/theme"
)

// Focus slots within the basics step.
const (
	basicsFocusName = iota
	basicsFocusTone
	basicsFocusPurpose
	basicsFocusBusiness
	basicsFocusCount
)

// BasicsStep handles step 1: name, tone, purpose and business info.
// Values are written back into the shared draft on every update so the
// wizard's dirty check always sees current input.
type BasicsStep struct {
	draft *draft.Draft

	name     textinput.Model
	toneIdx  int
	purpose  textarea.Model
	business textarea.Model

	focus  int
	width  int
	height int
	err    string
}

// NewBasicsStep creates the basics step seeded from the draft.
func NewBasicsStep(d *draft.Draft) *BasicsStep {
	name := textinput.New()
	name.Placeholder = "ej. 'Taquería El Paso' o 'Soporte MX'"
	name.CharLimit = 100
	name.SetValue(d.Name)
	name.Focus()

	purpose := textarea.New()
	purpose.Placeholder = "¿Para qué sirve tu chatbot?\nej. tomar pedidos, responder dudas, agendar citas..."
	purpose.CharLimit = 2000
	purpose.SetHeight(4)
	purpose.SetWidth(60)
	purpose.SetValue(d.Purpose)

	business := textarea.New()
	business.Placeholder = "Información de tu negocio (horarios, dirección, precios)..."
	business.CharLimit = 5000
	business.SetHeight(4)
	business.SetWidth(60)
	business.SetValue(d.BusinessInfo)

	toneIdx := 0
	for i, tone := range draft.Tones {
		if tone == d.Tone {
			toneIdx = i
		}
	}

	return &BasicsStep{
		draft:    d,
		name:     name,
		toneIdx:  toneIdx,
		purpose:  purpose,
		business: business,
		focus:    basicsFocusName,
	}
}

// Init initializes the basics step.
func (s *BasicsStep) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the basics step.
func (s *BasicsStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab":
			if s.focus == basicsFocusCount-1 {
				s.blurAll()
				return func() tea.Msg { return TabExitForwardMsg{} }
			}
			s.setFocus(s.focus + 1)
			return nil
		case "shift+tab":
			if s.focus == 0 {
				s.blurAll()
				return func() tea.Msg { return TabExitBackwardMsg{} }
			}
			s.setFocus(s.focus - 1)
			return nil
		case "left", "right":
			if s.focus == basicsFocusTone {
				if msg.String() == "right" {
					s.toneIdx = (s.toneIdx + 1) % len(draft.Tones)
				} else {
					s.toneIdx = (s.toneIdx + len(draft.Tones) - 1) % len(draft.Tones)
				}
				s.sync()
				return nil
			}
		case "enter":
			if s.focus == basicsFocusName || s.focus == basicsFocusTone {
				// Enter on single-line slots moves forward, not submit;
				// textareas keep enter for newlines.
				s.setFocus(s.focus + 1)
				return nil
			}
		default:
			if s.err != "" {
				s.err = ""
			}
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case basicsFocusName:
		s.name, cmd = s.name.Update(msg)
	case basicsFocusPurpose:
		s.purpose, cmd = s.purpose.Update(msg)
	case basicsFocusBusiness:
		s.business, cmd = s.business.Update(msg)
	}
	s.sync()
	return cmd
}

// sync writes current input values back into the draft.
func (s *BasicsStep) sync() {
	s.draft.Name = s.name.Value()
	s.draft.Tone = draft.Tones[s.toneIdx]
	s.draft.Purpose = s.purpose.Value()
	s.draft.BusinessInfo = s.business.Value()
}

// View renders the basics step content.
func (s *BasicsStep) View() string {
	t := theme.Current()

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase))
	focusedLabel := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Bold(true)

	label := func(slot int, text string) string {
		if s.focus == slot {
			return focusedLabel.Render("▸ " + text)
		}
		return labelStyle.Render("  " + text)
	}

	// Tone selector rendered inline
	toneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase))
	if s.focus == basicsFocusTone {
		toneStyle = toneStyle.Foreground(lipgloss.Color(t.Primary)).Bold(true)
	}
	tone := toneStyle.Render("◀ " + draft.Tones[s.toneIdx] + " ▶")

	parts := []string{
		label(basicsFocusName, "Nombre"),
		s.name.View(),
		"",
		label(basicsFocusTone, "Tono"),
		tone,
		"",
		label(basicsFocusPurpose, "Propósito"),
		s.purpose.View(),
		"",
		label(basicsFocusBusiness, "Información del negocio (opcional)"),
		s.business.View(),
	}

	if s.err != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).Bold(true)
		parts = append(parts, "", errStyle.Render("✗ "+s.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SetSize updates the size of the basics step.
func (s *BasicsStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	inputWidth := width - 4
	if inputWidth < 30 {
		inputWidth = 30
	}
	s.name.SetWidth(inputWidth)
	s.purpose.SetWidth(inputWidth)
	s.business.SetWidth(inputWidth)
}

// Focus focuses the first input.
func (s *BasicsStep) Focus() {
	s.setFocus(basicsFocusName)
}

// FocusLast focuses the last input.
func (s *BasicsStep) FocusLast() {
	s.setFocus(basicsFocusBusiness)
}

// Blur blurs all inputs.
func (s *BasicsStep) Blur() {
	s.blurAll()
}

// Submit validates the step-1 gate and emits BasicsDoneMsg.
func (s *BasicsStep) Submit() tea.Cmd {
	s.sync()
	if !s.draft.Step1Valid() {
		if strings.TrimSpace(s.draft.Name) == "" {
			s.err = "El nombre no puede estar vacío"
		} else {
			s.err = "El propósito no puede estar vacío"
		}
		return nil
	}
	s.err = ""
	return func() tea.Msg {
		return BasicsDoneMsg{}
	}
}

func (s *BasicsStep) setFocus(slot int) {
	s.blurAll()
	s.focus = slot
	switch slot {
	case basicsFocusName:
		s.name.Focus()
	case basicsFocusPurpose:
		s.purpose.Focus()
	case basicsFocusBusiness:
		s.business.Focus()
	}
}

func (s *BasicsStep) blurAll() {
	s.name.Blur()
	s.purpose.Blur()
	s.business.Blur()
}
