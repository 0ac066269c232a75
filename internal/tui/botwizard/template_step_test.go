package botwizard

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumweb/botstudio/internal/botapi"
)

func testTemplates() []botapi.Template {
	return []botapi.Template{
		{
			ID: 1, Name: "Restaurante", Tone: "amigable",
			Flows: []botapi.FlowEntry{
				{UserMessage: "hola", BotResponse: "bienvenido"},
				{UserMessage: "menú", BotResponse: "tacos"},
			},
		},
		{
			ID: 2, Name: "Soporte", Tone: "profesional",
			Flows: []botapi.FlowEntry{
				{UserMessage: "ayuda", BotResponse: "claro"},
			},
		},
	}
}

func TestTemplatePreviewIsIsolated(t *testing.T) {
	s := NewTemplateStep(nil)
	s.Update(TemplatesLoadedMsg{Templates: testTemplates()})
	require.True(t, s.HasSelection())

	// Open the preview for the first template.
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.True(t, s.previewing)
	require.NotNil(t, s.previewGraph)
	assert.Equal(t, 2, s.previewGraph.Len())

	// Cancel: the preview graph is discarded, nothing was emitted.
	cmd := s.Update(tea.KeyPressMsg{Text: "n"})
	assert.Nil(t, cmd)
	assert.False(t, s.previewing)
	assert.Nil(t, s.previewGraph)
}

func TestTemplateConfirmEmitsApplied(t *testing.T) {
	s := NewTemplateStep(nil)
	s.Update(TemplatesLoadedMsg{Templates: testTemplates()})

	// Select the second template and confirm.
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	cmd := s.Update(tea.KeyPressMsg{Text: "y"})
	require.NotNil(t, cmd)

	msg := cmd()
	applied, ok := msg.(TemplateAppliedMsg)
	require.True(t, ok, "expected TemplateAppliedMsg, got %T", msg)
	assert.Equal(t, 2, applied.Template.ID)
	assert.Equal(t, "Soporte", applied.Template.Name)
}

func TestTemplateSkipAllowed(t *testing.T) {
	s := NewTemplateStep(nil)
	s.Update(TemplatesLoadedMsg{Templates: testTemplates()})

	cmd := s.Update(tea.KeyPressMsg{Text: "s"})
	require.NotNil(t, cmd)

	_, ok := cmd().(TemplateSkippedMsg)
	assert.True(t, ok)
}

func TestTemplateFetchErrorStillSkippable(t *testing.T) {
	s := NewTemplateStep(nil)
	s.Update(TemplatesErrorMsg{Err: &botapi.TransportError{Op: "GET /api/templates"}})

	assert.False(t, s.loading)
	assert.NotEmpty(t, s.fetchErr)
	assert.False(t, s.HasSelection())

	cmd := s.Update(tea.KeyPressMsg{Text: "s"})
	require.NotNil(t, cmd)
	_, ok := cmd().(TemplateSkippedMsg)
	assert.True(t, ok)
}
