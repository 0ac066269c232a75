package botwizard

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/config"
	"github.com/quantumweb/botstudio/internal/draft"
	"github.com/quantumweb/botstudio/internal/flowgraph"
	"github.com/quantumweb/botstudio/internal/logger"
	"github.com/quantumweb/botstudio/internal/preview"
	"github.com/quantumweb/botstudio/internal/tui/theme"
)

// Step enumeration for the wizard flow
const (
	StepBasics   = 0 // Name, tone, purpose, business info
	StepTemplate = 1 // Optional server template
	StepFlows    = 2 // Flow-graph editor and chat preview
	StepFinalize = 3 // WhatsApp, menu JSON, uploads, submit
)

// Modal layout constants
const (
	modalWidth        = 70
	modalPadding      = 2
	modalBorderWidth  = 1
	modalContentWidth = modalWidth - (modalPadding * 2) - (modalBorderWidth * 2)
)

// ProgramSender is an interface for sending messages to the Bubbletea program
// from goroutines (upload progress). Mockable in tests.
type ProgramSender interface {
	Send(tea.Msg)
}

// WizardModel is the root BubbleTea model for the chatbot wizard. It owns the
// draft and the graph; steps mutate them only through their APIs, and network
// results are applied on the main loop only.
type WizardModel struct {
	step      int
	cancelled bool
	width     int
	height    int
	cfg       *config.Config
	client    *botapi.Client
	ctx       context.Context

	draft *draft.Draft
	graph *flowgraph.Graph

	// Step components
	basicsStep   *BasicsStep
	templateStep *TemplateStep
	flowStep     *FlowStep
	finalizeStep *FinalizeStep

	// Button bar with focus tracking
	buttonBar     *ButtonBar
	buttonFocused bool

	// Cached button bars per step (prevents focus reset on re-render)
	basicsButtonBar   *ButtonBar
	templateButtonBar *ButtonBar
	flowButtonBar     *ButtonBar
	finalizeButtonBar *ButtonBar

	// In-flight guard and stale-response protection. Every dispatched
	// request carries gen; responses with an older gen are dropped.
	busy bool
	gen  int

	confirmExit *ConfirmationModal
	submitErr   string
	successMsg  string
	loginErr    error

	program ProgramSender
}

// Run is the entry point for the chatbot wizard. editBot, when non-nil, seeds
// the wizard for editing an existing bot.
func Run(cfg *config.Config, client *botapi.Client, editBot *botapi.Bot) error {
	m := NewWizard(cfg, client, editBot)

	p := tea.NewProgram(m)
	m.program = p

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	wizModel, ok := finalModel.(*WizardModel)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}

	if wizModel.loginErr != nil {
		return wizModel.loginErr
	}
	return nil
}

// NewWizard builds the wizard model without starting a program. Used by Run
// and by the dashboard's edit action.
func NewWizard(cfg *config.Config, client *botapi.Client, editBot *botapi.Bot) *WizardModel {
	var d *draft.Draft
	g := flowgraph.New()
	if editBot != nil {
		d = draft.FromBot(*editBot)
		if len(editBot.Flows) > 0 {
			g.LoadFromEntries(editBot.Flows)
		}
	} else {
		d = draft.New(cfg.Tone)
	}

	return &WizardModel{
		step:        StepBasics,
		cfg:         cfg,
		client:      client,
		ctx:         context.Background(),
		draft:       d,
		graph:       g,
		confirmExit: NewConfirmationModal("¿Salir del asistente?", "Perderás los cambios sin guardar."),
	}
}

// SetProgram wires the program sender for goroutine-sent messages.
func (m *WizardModel) SetProgram(p ProgramSender) {
	m.program = p
}

// Init initializes the wizard model.
func (m *WizardModel) Init() tea.Cmd {
	m.basicsStep = NewBasicsStep(m.draft)
	return m.basicsStep.Init()
}

// Update handles messages for the wizard.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if m.confirmExit.IsVisible() {
			switch msg.String() {
			case "y", "Y":
				m.cancelled = true
				return m, tea.Quit
			case "n", "N", "esc":
				m.confirmExit.Hide()
			}
			return m, nil
		}

		if m.buttonFocused && m.buttonBar != nil {
			switch msg.String() {
			case "tab", "right":
				if !m.buttonBar.FocusNext() {
					m.buttonFocused = false
					m.buttonBar.Blur()
					return m, m.focusStepContentFirst()
				}
				return m, nil
			case "shift+tab", "left":
				if !m.buttonBar.FocusPrev() {
					m.buttonFocused = false
					m.buttonBar.Blur()
					return m, m.focusStepContentLast()
				}
				return m, nil
			case "enter", " ":
				return m.activateButton(m.buttonBar.FocusedButton())
			}
		}

		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "esc":
			if m.step == StepBasics {
				if m.draft.Dirty() {
					m.confirmExit.Show()
					return m, nil
				}
				m.cancelled = true
				return m, tea.Quit
			}
			// Steps with inner modes consume ESC themselves.
			if m.step == StepFlows && m.flowStep != nil && m.flowStep.mode != flowModeList {
				break
			}
			if m.step == StepTemplate && m.templateStep != nil && m.templateStep.previewing {
				break
			}
			return m.goBack()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateCurrentStepSize()
		return m, nil

	case BasicsDoneMsg:
		return m.advanceTo(StepTemplate)

	case TemplateAppliedMsg:
		// Destructive by contract: draft scalars and graph are replaced.
		m.draft.ApplyTemplate(msg.Template)
		m.graph.ApplyTemplate(msg.Template)
		return m.advanceTo(StepFlows)

	case TemplateSkippedMsg:
		return m.advanceTo(StepFlows)

	case FlowsDoneMsg:
		return m.advanceTo(StepFinalize)

	case PreviewRequestMsg:
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.gen++
		return m, m.startPreview(msg.Message)

	case PreviewResultMsg:
		if msg.Gen != m.gen {
			logger.Debug("dropping stale preview result (gen %d, want %d)", msg.Gen, m.gen)
			return m, nil
		}
		m.busy = false
		if msg.Err != nil {
			m.loginErr = msg.Err
			return m, tea.Quit
		}
		return m.updateCurrentStep(msg)

	case UploadRequestMsg:
		return m, m.startUpload(msg.Kind, msg.Path)

	case ConnectWhatsAppRequestMsg:
		if m.busy || m.draft.EditingBotID == nil {
			return m, nil
		}
		m.busy = true
		m.gen++
		return m, m.startConnectWhatsApp(msg.Number)

	case ConnectWhatsAppResultMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.busy = false
		return m.updateCurrentStep(msg)

	case FinalizeRequestMsg:
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.gen++
		m.submitErr = ""
		return m, m.startFinalize()

	case FinalizeResultMsg:
		if msg.Gen != m.gen {
			logger.Debug("dropping stale finalize result (gen %d, want %d)", msg.Gen, m.gen)
			return m, nil
		}
		m.busy = false
		if msg.Err != nil {
			if msg.Err == botapi.ErrLoginRequired {
				m.loginErr = msg.Err
				return m, tea.Quit
			}
			// Failure leaves draft, graph and step untouched.
			m.submitErr = botapi.UserMessage(msg.Err)
			return m, nil
		}
		// Success: back to a fresh step 1.
		logger.Info("bot saved: %s (id %d)", msg.Message, msg.BotID)
		m.successMsg = msg.Message
		m.draft.Reset(m.cfg.Tone)
		m.graph.Reset()
		m.step = StepBasics
		m.buttonFocused = false
		m.buttonBar = nil
		m.basicsButtonBar = nil
		m.templateButtonBar = nil
		m.flowButtonBar = nil
		m.finalizeButtonBar = nil
		cmd := m.initCurrentStep()
		return m, cmd

	case TabExitForwardMsg:
		m.buttonFocused = true
		m.blurStepContent()
		m.ensureButtonBar()
		m.buttonBar.FocusFirst()
		return m, nil

	case TabExitBackwardMsg:
		m.buttonFocused = true
		m.blurStepContent()
		m.ensureButtonBar()
		m.buttonBar.FocusLast()
		return m, nil
	}

	return m.updateCurrentStep(msg)
}

// advanceTo moves forward to the given adjacent step.
func (m *WizardModel) advanceTo(step int) (tea.Model, tea.Cmd) {
	m.step = step
	m.buttonFocused = false
	m.buttonBar = nil
	m.successMsg = ""
	if step == StepFlows && m.graph.Len() == 0 {
		// The editor invariant needs at least one node.
		m.graph.LoadFromEntries(m.draft.Flows)
	}
	cmd := m.initCurrentStep()
	return m, cmd
}

// goBack moves to the previous step. Backward movement never mutates the
// draft or the graph.
func (m *WizardModel) goBack() (tea.Model, tea.Cmd) {
	if m.step > StepBasics {
		m.step--
		m.buttonFocused = false
		m.buttonBar = nil
		cmd := m.initCurrentStep()
		return m, cmd
	}
	return m, nil
}

// goNext submits the current step; each step validates itself.
func (m *WizardModel) goNext() (tea.Model, tea.Cmd) {
	switch m.step {
	case StepBasics:
		if m.basicsStep != nil {
			return m, m.basicsStep.Submit()
		}
	case StepTemplate:
		return m, func() tea.Msg { return TemplateSkippedMsg{} }
	case StepFlows:
		if m.flowStep != nil {
			return m, m.flowStep.Submit()
		}
	case StepFinalize:
		if m.finalizeStep != nil {
			return m, m.finalizeStep.Submit()
		}
	}
	return m, nil
}

// initCurrentStep initializes the current step component.
func (m *WizardModel) initCurrentStep() tea.Cmd {
	var cmd tea.Cmd
	switch m.step {
	case StepBasics:
		m.basicsStep = NewBasicsStep(m.draft)
		cmd = m.basicsStep.Init()
	case StepTemplate:
		m.templateStep = NewTemplateStep(m.client)
		cmd = m.templateStep.Init()
	case StepFlows:
		m.flowStep = NewFlowStep(m.graph)
		cmd = m.flowStep.Init()
	case StepFinalize:
		m.finalizeStep = NewFinalizeStep(m.draft)
		cmd = m.finalizeStep.Init()
	}
	m.updateCurrentStepSize()
	return cmd
}

// updateCurrentStep forwards a message to the current step.
func (m *WizardModel) updateCurrentStep(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.step {
	case StepBasics:
		if m.basicsStep != nil {
			cmd = m.basicsStep.Update(msg)
		}
	case StepTemplate:
		if m.templateStep != nil {
			cmd = m.templateStep.Update(msg)
		}
	case StepFlows:
		if m.flowStep != nil {
			cmd = m.flowStep.Update(msg)
		}
	case StepFinalize:
		if m.finalizeStep != nil {
			cmd = m.finalizeStep.Update(msg)
		}
	}
	return m, cmd
}

// startPreview dispatches one ephemeral preview exchange.
func (m *WizardModel) startPreview(message string) tea.Cmd {
	gen := m.gen
	client := m.client
	ctx := m.ctx
	name := m.draft.Name
	tone := m.draft.Tone
	purpose := m.draft.Purpose
	entries := m.draft.Flows
	if m.graph.Touched() {
		entries = m.graph.Entries()
	}
	return func() tea.Msg {
		lines, err := preview.Simulate(ctx, client, name, tone, purpose, entries, message)
		return PreviewResultMsg{Gen: gen, Lines: lines, Err: err}
	}
}

// startUpload dispatches a file upload, streaming progress through the
// program sender.
func (m *WizardModel) startUpload(kind botapi.FileKind, path string) tea.Cmd {
	client := m.client
	ctx := m.ctx
	program := m.program
	maxBytes := int64(m.cfg.UploadMaxMB) << 20
	return func() tea.Msg {
		url, err := client.UploadFile(ctx, path, kind, maxBytes, func(fraction float64) {
			if program != nil {
				program.Send(UploadProgressMsg{Kind: kind, Fraction: fraction})
			}
		})
		return UploadResultMsg{Kind: kind, URL: url, Err: err}
	}
}

// startConnectWhatsApp dispatches the connect-whatsapp request for the bot
// being edited.
func (m *WizardModel) startConnectWhatsApp(number string) tea.Cmd {
	gen := m.gen
	client := m.client
	ctx := m.ctx
	botID := *m.draft.EditingBotID
	return func() tea.Msg {
		message, err := client.ConnectWhatsApp(ctx, botID, number)
		return ConnectWhatsAppResultMsg{Gen: gen, Message: message, Err: err}
	}
}

// startFinalize dispatches the create or update request.
func (m *WizardModel) startFinalize() tea.Cmd {
	gen := m.gen
	client := m.client
	ctx := m.ctx
	payload := m.draft.Payload(m.graph.Entries(), m.graph.Touched())
	editID := m.draft.EditingBotID
	return func() tea.Msg {
		if editID != nil {
			message, err := client.UpdateBot(ctx, *editID, payload)
			return FinalizeResultMsg{Gen: gen, Message: message, BotID: *editID, Err: err}
		}
		res, err := client.CreateBot(ctx, payload)
		if err != nil {
			return FinalizeResultMsg{Gen: gen, Err: err}
		}
		return FinalizeResultMsg{Gen: gen, Message: res.Message, BotID: res.ChatbotID}
	}
}

// View renders the wizard.
func (m *WizardModel) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if m.width == 0 || m.height == 0 {
		view.Content = lipgloss.NewLayer("")
		return view
	}

	content := m.renderCurrentStep()

	centered := lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(centered).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderCurrentStep renders the modal for the current step.
func (m *WizardModel) renderCurrentStep() string {
	t := theme.Current()

	if m.confirmExit.IsVisible() {
		return m.confirmExit.Render()
	}

	var stepTitle string
	switch m.step {
	case StepBasics:
		stepTitle = "Paso 1: Datos básicos"
	case StepTemplate:
		stepTitle = "Paso 2: Plantilla"
	case StepFlows:
		stepTitle = "Paso 3: Flujos"
	case StepFinalize:
		stepTitle = "Paso 4: Finalizar"
	}
	if m.draft.EditingBotID != nil {
		stepTitle = "Editar chatbot — " + stepTitle
	} else {
		stepTitle = "Crear chatbot — " + stepTitle
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Primary)).
		MarginBottom(1)
	title := titleStyle.Render(stepTitle)

	var stepContent string
	switch m.step {
	case StepBasics:
		if m.basicsStep != nil {
			stepContent = m.basicsStep.View()
		}
	case StepTemplate:
		if m.templateStep != nil {
			stepContent = m.templateStep.View()
		}
	case StepFlows:
		if m.flowStep != nil {
			stepContent = m.flowStep.View()
		}
	case StepFinalize:
		if m.finalizeStep != nil {
			stepContent = m.finalizeStep.View()
		}
	}

	m.ensureButtonBar()
	buttonBarContent := m.buttonBar.Render()

	var extras []string
	if m.successMsg != "" {
		extras = append(extras, lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).Bold(true).
			Render("✓ "+m.successMsg))
	}
	if m.submitErr != "" {
		extras = append(extras, lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)).Bold(true).
			Render("✗ "+m.submitErr))
	}
	if m.busy {
		extras = append(extras, lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)).
			Render("Enviando..."))
	}

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgMuted)).
		Render("tab navegar • esc volver/salir")

	modalStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Padding(2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.BorderDefault))

	parts := []string{title, stepContent, ""}
	parts = append(parts, extras...)
	parts = append(parts, buttonBarContent, "", hint)

	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// getModalContentSize returns the internal content dimensions for the modal.
func (m *WizardModel) getModalContentSize() (width, height int) {
	width = modalContentWidth

	height = m.height - 4
	if height < 20 {
		height = 20
	}
	if height > 40 {
		height = 40
	}
	height = height - 10
	if height < 10 {
		height = 10
	}
	return width, height
}

// updateCurrentStepSize updates the size of the current step.
func (m *WizardModel) updateCurrentStepSize() {
	contentWidth, contentHeight := m.getModalContentSize()

	switch m.step {
	case StepBasics:
		if m.basicsStep != nil {
			m.basicsStep.SetSize(contentWidth, contentHeight)
		}
	case StepTemplate:
		if m.templateStep != nil {
			m.templateStep.SetSize(contentWidth, contentHeight)
		}
	case StepFlows:
		if m.flowStep != nil {
			m.flowStep.SetSize(contentWidth, contentHeight)
		}
	case StepFinalize:
		if m.finalizeStep != nil {
			m.finalizeStep.SetSize(contentWidth, contentHeight)
		}
	}
}

// ensureButtonBar creates the button bar if needed, using the cached
// instance per step so focus survives re-renders.
func (m *WizardModel) ensureButtonBar() {
	var cachedBar *ButtonBar
	switch m.step {
	case StepBasics:
		cachedBar = m.basicsButtonBar
	case StepTemplate:
		cachedBar = m.templateButtonBar
	case StepFlows:
		cachedBar = m.flowButtonBar
	case StepFinalize:
		cachedBar = m.finalizeButtonBar
	}

	if cachedBar != nil {
		m.buttonBar = cachedBar
		return
	}

	var buttons []Button
	switch m.step {
	case StepBasics:
		buttons = []Button{
			{ID: ButtonCancel, Label: "Cancelar"},
			{ID: ButtonNext, Label: "Siguiente →"},
		}
	case StepTemplate:
		buttons = []Button{
			{ID: ButtonBack, Label: "← Atrás"},
			{ID: ButtonNext, Label: "Omitir →"},
		}
	case StepFlows:
		buttons = []Button{
			{ID: ButtonBack, Label: "← Atrás"},
			{ID: ButtonNext, Label: "Siguiente →"},
		}
	case StepFinalize:
		finishLabel := "Crear chatbot"
		if m.draft.EditingBotID != nil {
			finishLabel = "Guardar cambios"
		}
		buttons = []Button{
			{ID: ButtonBack, Label: "← Atrás"},
			{ID: ButtonFinish, Label: finishLabel},
		}
	}

	newBar := NewButtonBar(buttons)
	newBar.SetWidth(modalContentWidth)

	switch m.step {
	case StepBasics:
		m.basicsButtonBar = newBar
	case StepTemplate:
		m.templateButtonBar = newBar
	case StepFlows:
		m.flowButtonBar = newBar
	case StepFinalize:
		m.finalizeButtonBar = newBar
	}

	m.buttonBar = newBar
}

// activateButton handles button activation.
func (m *WizardModel) activateButton(btnID ButtonID) (tea.Model, tea.Cmd) {
	switch btnID {
	case ButtonBack:
		return m.goBack()
	case ButtonNext, ButtonFinish:
		return m.goNext()
	case ButtonCancel:
		if m.draft.Dirty() {
			m.confirmExit.Show()
			return m, nil
		}
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

// focusStepContentFirst focuses the first element in step content.
func (m *WizardModel) focusStepContentFirst() tea.Cmd {
	switch m.step {
	case StepBasics:
		if m.basicsStep != nil {
			m.basicsStep.Focus()
		}
	case StepFlows:
		if m.flowStep != nil {
			m.flowStep.Focus()
		}
	case StepFinalize:
		if m.finalizeStep != nil {
			m.finalizeStep.Focus()
		}
	}
	return nil
}

// focusStepContentLast focuses the last element in step content.
func (m *WizardModel) focusStepContentLast() tea.Cmd {
	switch m.step {
	case StepBasics:
		if m.basicsStep != nil {
			m.basicsStep.FocusLast()
		}
	case StepFinalize:
		if m.finalizeStep != nil {
			m.finalizeStep.FocusLast()
		}
	default:
		return m.focusStepContentFirst()
	}
	return nil
}

// blurStepContent blurs all step content.
func (m *WizardModel) blurStepContent() {
	switch m.step {
	case StepBasics:
		if m.basicsStep != nil {
			m.basicsStep.Blur()
		}
	case StepFlows:
		if m.flowStep != nil {
			m.flowStep.Blur()
		}
	case StepFinalize:
		if m.finalizeStep != nil {
			m.finalizeStep.Blur()
		}
	}
}
