package botwizard

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/flowgraph"
	"github.com/quantumweb/botstudio/internal/logger"
	"github.com/quantumweb/botstudio/internal/tui/theme"
)

// TemplateStep handles step 2: pick a server template or skip.
// Selecting a template renders its flows into an isolated preview graph;
// nothing touches the draft until the user confirms.
type TemplateStep struct {
	client    *botapi.Client
	templates []botapi.Template
	selected  int
	loading   bool
	fetchErr  string

	// Preview state. previewGraph is rebuilt per selection and discarded on
	// cancel; the wizard graph is only replaced after confirmation.
	previewing   bool
	previewGraph *flowgraph.Graph

	spinner spinner.Model
	width   int
	height  int
}

// NewTemplateStep creates the template step. Templates are fetched by Init.
func NewTemplateStep(client *botapi.Client) *TemplateStep {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Current().Primary))

	return &TemplateStep{
		client:  client,
		loading: true,
		spinner: s,
	}
}

// Init starts the template fetch and the spinner.
func (s *TemplateStep) Init() tea.Cmd {
	return tea.Batch(s.fetchTemplates(), s.spinner.Tick)
}

// fetchTemplates loads the server template list.
func (s *TemplateStep) fetchTemplates() tea.Cmd {
	client := s.client
	return func() tea.Msg {
		templates, err := client.ListTemplates(context.Background())
		if err != nil {
			logger.Error("template fetch failed: %v", err)
			return TemplatesErrorMsg{Err: err}
		}
		return TemplatesLoadedMsg{Templates: templates}
	}
}

// Update handles messages for the template step.
func (s *TemplateStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case TemplatesLoadedMsg:
		s.loading = false
		s.templates = msg.Templates
		s.selected = 0
		return nil

	case TemplatesErrorMsg:
		s.loading = false
		s.fetchErr = botapi.UserMessage(msg.Err)
		return nil

	case spinner.TickMsg:
		if s.loading {
			var cmd tea.Cmd
			s.spinner, cmd = s.spinner.Update(msg)
			return cmd
		}
		return nil

	case tea.KeyPressMsg:
		if s.previewing {
			switch msg.String() {
			case "y", "Y", "enter":
				tpl := s.templates[s.selected]
				s.previewing = false
				s.previewGraph = nil
				return func() tea.Msg {
					return TemplateAppliedMsg{Template: tpl}
				}
			case "n", "N", "esc":
				// Discard: the preview graph was isolated, nothing to undo.
				s.previewing = false
				s.previewGraph = nil
				return nil
			}
			return nil
		}

		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return nil
		case "down", "j":
			if s.selected < len(s.templates)-1 {
				s.selected++
			}
			return nil
		case "enter":
			if s.loading || len(s.templates) == 0 {
				return nil
			}
			g := flowgraph.New()
			g.ApplyTemplate(s.templates[s.selected])
			s.previewGraph = g
			s.previewing = true
			return nil
		case "s":
			return func() tea.Msg {
				return TemplateSkippedMsg{}
			}
		}
	}
	return nil
}

// View renders the template step content.
func (s *TemplateStep) View() string {
	t := theme.Current()

	if s.loading {
		return s.spinner.View() + " Cargando plantillas..."
	}

	if s.previewing && s.previewGraph != nil {
		return s.renderPreview()
	}

	var parts []string

	if s.fetchErr != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error))
		parts = append(parts,
			errStyle.Render("✗ "+s.fetchErr),
			"",
			lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)).
				Render("Puedes continuar sin plantilla."),
		)
	} else if len(s.templates) == 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)).
			Render("No hay plantillas disponibles."))
	} else {
		header := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)).
			Render("Elige una plantilla como punto de partida:")
		parts = append(parts, header, "")

		selectedStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Primary)).
			Bold(true).
			Padding(0, 1)
		normalStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)).
			Padding(0, 1)
		descStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)).
			PaddingLeft(3)

		for i, tpl := range s.templates {
			line := fmt.Sprintf("%s (%s, %d flujos)", tpl.Name, tpl.Tone, len(tpl.Flows))
			if i == s.selected {
				parts = append(parts, selectedStyle.Render("▸ "+line))
			} else {
				parts = append(parts, normalStyle.Render("  "+line))
			}
			if i == s.selected && tpl.Description != "" {
				parts = append(parts, descStyle.Render(tpl.Description))
			}
		}
	}

	parts = append(parts, "", renderHintBar("↑↓", "navegar", "enter", "vista previa", "s", "omitir"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderPreview renders the isolated preview graph of the selected template.
func (s *TemplateStep) renderPreview() string {
	t := theme.Current()
	tpl := s.templates[s.selected]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Secondary)).
		Bold(true).
		Render("Vista previa: " + tpl.Name)

	nodeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase))
	arrowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted))

	parts := []string{title, ""}
	for _, node := range s.previewGraph.Nodes() {
		parts = append(parts,
			nodeStyle.Render(fmt.Sprintf("[%s] %s", node.ID, truncate(node.Entry.UserMessage, 44))),
			arrowStyle.Render("   → "+truncate(node.Entry.BotResponse, 42)),
		)
	}

	warn := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Warning)).
		Render("Aplicar la plantilla reemplaza tu borrador actual.")

	parts = append(parts, "", warn, "",
		renderHintBar("y", "aplicar", "n/esc", "cancelar"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SetSize updates the size of the template step.
func (s *TemplateStep) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// HasSelection reports whether any template list row is selectable.
func (s *TemplateStep) HasSelection() bool {
	return !s.loading && len(s.templates) > 0
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
