package botwizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/flowgraph"
	"github.com/quantumweb/botstudio/internal/preview"
	"github.com/quantumweb/botstudio/internal/tui/theme"
)

// Flow step interaction modes.
const (
	flowModeList    = iota // Node list navigation
	flowModeEdit           // Editing the selected node's fields
	flowModeConnect        // Picking a target node for a new edge
	flowModePreview        // Preview-chat pane focused
)

// Node editor focus slots.
const (
	nodeFocusUserMessage = iota
	nodeFocusBotResponse
	nodeFocusCondition
	nodeFocusActionType
	nodeFocusActionValue
	nodeFocusCount
)

var actionTypes = []botapi.ActionType{
	botapi.ActionNone,
	botapi.ActionPaymentLink,
	botapi.ActionScheduleLink,
}

// FlowStep handles step 3: the node-graph editor and the preview chat.
// The graph is owned by the wizard; this step mutates it through its API only.
type FlowStep struct {
	graph *flowgraph.Graph

	mode     int
	selected int // Node index in list/connect mode
	err      string

	// Node editor
	editingID   string
	nodeFocus   int
	userMsg     textinput.Model
	botResp     textarea.Model
	condition   textinput.Model
	actionIdx   int
	actionValue textinput.Model

	// Connect mode
	connectSourceID string
	connectTarget   int

	// Preview chat
	previewInput textinput.Model
	transcript   []preview.Line
	previewBusy  bool
	spinner      spinner.Model

	width  int
	height int
}

// NewFlowStep creates the flow editor over the wizard's graph.
func NewFlowStep(g *flowgraph.Graph) *FlowStep {
	pi := textinput.New()
	pi.Placeholder = "Escribe un mensaje de prueba..."
	pi.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Current().Primary))

	return &FlowStep{
		graph:        g,
		previewInput: pi,
		spinner:      sp,
	}
}

// Init initializes the flow step.
func (s *FlowStep) Init() tea.Cmd {
	return nil
}

// Update handles messages for the flow step.
func (s *FlowStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PreviewResultMsg:
		s.previewBusy = false
		if msg.Err == nil {
			s.transcript = append(s.transcript, msg.Lines...)
		}
		return nil

	case spinner.TickMsg:
		if s.previewBusy {
			var cmd tea.Cmd
			s.spinner, cmd = s.spinner.Update(msg)
			return cmd
		}
		return nil

	case tea.KeyPressMsg:
		switch s.mode {
		case flowModeEdit:
			return s.updateEdit(msg)
		case flowModeConnect:
			return s.updateConnect(msg)
		case flowModePreview:
			return s.updatePreview(msg)
		default:
			return s.updateList(msg)
		}
	}

	if s.mode == flowModePreview {
		var cmd tea.Cmd
		s.previewInput, cmd = s.previewInput.Update(msg)
		return cmd
	}
	return nil
}

func (s *FlowStep) updateList(msg tea.KeyPressMsg) tea.Cmd {
	nodes := s.graph.Nodes()
	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(nodes)-1 {
			s.selected++
		}
	case "a":
		id := s.graph.AddNode()
		for i, n := range s.graph.Nodes() {
			if n.ID == id {
				s.selected = i
			}
		}
		s.openEditor(id)
	case "e", "enter":
		if len(nodes) > 0 {
			s.openEditor(nodes[s.selected].ID)
		}
	case "d":
		if len(nodes) > 0 {
			if err := s.graph.DeleteNode(nodes[s.selected].ID); err != nil {
				s.err = err.Error()
			} else {
				s.err = ""
				if s.selected >= s.graph.Len() {
					s.selected = s.graph.Len() - 1
				}
			}
		}
	case "c":
		if len(nodes) > 1 {
			s.mode = flowModeConnect
			s.connectSourceID = nodes[s.selected].ID
			s.connectTarget = 0
		}
	case "p":
		s.mode = flowModePreview
		s.previewInput.Focus()
	case "tab":
		return func() tea.Msg { return TabExitForwardMsg{} }
	case "shift+tab":
		return func() tea.Msg { return TabExitBackwardMsg{} }
	default:
		if s.err != "" {
			s.err = ""
		}
	}
	return nil
}

func (s *FlowStep) updateEdit(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+d":
		s.saveEditor()
		s.mode = flowModeList
		return nil
	case "tab":
		s.setNodeFocus((s.nodeFocus + 1) % nodeFocusCount)
		return nil
	case "shift+tab":
		s.setNodeFocus((s.nodeFocus + nodeFocusCount - 1) % nodeFocusCount)
		return nil
	case "left", "right":
		if s.nodeFocus == nodeFocusActionType {
			if msg.String() == "right" {
				s.actionIdx = (s.actionIdx + 1) % len(actionTypes)
			} else {
				s.actionIdx = (s.actionIdx + len(actionTypes) - 1) % len(actionTypes)
			}
			return nil
		}
	case "enter":
		if s.nodeFocus != nodeFocusBotResponse {
			s.setNodeFocus((s.nodeFocus + 1) % nodeFocusCount)
			return nil
		}
	}

	var cmd tea.Cmd
	switch s.nodeFocus {
	case nodeFocusUserMessage:
		s.userMsg, cmd = s.userMsg.Update(msg)
	case nodeFocusBotResponse:
		s.botResp, cmd = s.botResp.Update(msg)
	case nodeFocusCondition:
		s.condition, cmd = s.condition.Update(msg)
	case nodeFocusActionValue:
		s.actionValue, cmd = s.actionValue.Update(msg)
	}
	return cmd
}

func (s *FlowStep) updateConnect(msg tea.KeyPressMsg) tea.Cmd {
	nodes := s.graph.Nodes()
	switch msg.String() {
	case "up", "k":
		if s.connectTarget > 0 {
			s.connectTarget--
		}
	case "down", "j":
		if s.connectTarget < len(nodes)-1 {
			s.connectTarget++
		}
	case "enter":
		if err := s.graph.Connect(s.connectSourceID, nodes[s.connectTarget].ID); err != nil {
			s.err = err.Error()
		} else {
			s.err = ""
		}
		s.mode = flowModeList
	case "esc":
		s.mode = flowModeList
	}
	return nil
}

func (s *FlowStep) updatePreview(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.mode = flowModeList
		s.previewInput.Blur()
		return nil
	case "enter":
		text := strings.TrimSpace(s.previewInput.Value())
		if text == "" || s.previewBusy {
			return nil
		}
		s.previewInput.SetValue("")
		s.previewBusy = true
		return tea.Batch(
			s.spinner.Tick,
			func() tea.Msg { return PreviewRequestMsg{Message: text} },
		)
	}

	var cmd tea.Cmd
	s.previewInput, cmd = s.previewInput.Update(msg)
	return cmd
}

// openEditor seeds the node editor from the node's current entry.
func (s *FlowStep) openEditor(id string) {
	var node flowgraph.Node
	for _, n := range s.graph.Nodes() {
		if n.ID == id {
			node = n
		}
	}

	um := textinput.New()
	um.Placeholder = "Mensaje del usuario, ej. 'quiero ordenar'"
	um.CharLimit = 500
	um.SetValue(node.Entry.UserMessage)
	um.Focus()

	br := textarea.New()
	br.Placeholder = "Respuesta del bot..."
	br.CharLimit = 2000
	br.SetHeight(3)
	br.SetWidth(54)
	br.SetValue(node.Entry.BotResponse)

	cond := textinput.New()
	cond.Placeholder = "Condición (opcional)"
	cond.CharLimit = 200
	cond.SetValue(node.Entry.Condition)

	av := textinput.New()
	av.Placeholder = "Valor de la acción, ej. URL de pago"
	av.CharLimit = 500

	s.actionIdx = 0
	if node.Entry.Action != nil {
		for i, at := range actionTypes {
			if at == node.Entry.Action.Type {
				s.actionIdx = i
			}
		}
		av.SetValue(node.Entry.Action.Value)
	}

	s.editingID = id
	s.userMsg = um
	s.botResp = br
	s.condition = cond
	s.actionValue = av
	s.nodeFocus = nodeFocusUserMessage
	s.mode = flowModeEdit
}

// saveEditor writes the editor fields back through UpdateNode.
func (s *FlowStep) saveEditor() {
	um := s.userMsg.Value()
	br := s.botResp.Value()
	cond := s.condition.Value()
	at := actionTypes[s.actionIdx]
	av := s.actionValue.Value()
	_ = s.graph.UpdateNode(s.editingID, flowgraph.EntryPatch{
		UserMessage: &um,
		BotResponse: &br,
		Condition:   &cond,
		ActionType:  &at,
		ActionValue: &av,
	})
}

func (s *FlowStep) setNodeFocus(slot int) {
	s.userMsg.Blur()
	s.botResp.Blur()
	s.condition.Blur()
	s.actionValue.Blur()
	s.nodeFocus = slot
	switch slot {
	case nodeFocusUserMessage:
		s.userMsg.Focus()
	case nodeFocusBotResponse:
		s.botResp.Focus()
	case nodeFocusCondition:
		s.condition.Focus()
	case nodeFocusActionValue:
		s.actionValue.Focus()
	}
}

// View renders the flow step content.
func (s *FlowStep) View() string {
	switch s.mode {
	case flowModeEdit:
		return s.renderEditor()
	case flowModePreview:
		return s.renderPreviewPane()
	default:
		return s.renderList()
	}
}

func (s *FlowStep) renderList() string {
	t := theme.Current()
	nodes := s.graph.Nodes()
	edges := s.graph.Edges()

	header := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)).
		Render(fmt.Sprintf("Flujos de conversación (%d nodos, %d conexiones):", len(nodes), len(edges)))

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.BgBase)).
		Background(lipgloss.Color(t.Primary)).
		Bold(true).
		Padding(0, 1)
	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgBase)).
		Padding(0, 1)
	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgMuted)).
		PaddingLeft(3)

	parts := []string{header, ""}
	for i, n := range nodes {
		label := n.Entry.UserMessage
		if strings.TrimSpace(label) == "" {
			label = "(sin mensaje)"
		}
		line := fmt.Sprintf("[%s] %s", n.ID, truncate(label, 40))
		if s.mode == flowModeConnect {
			if i == s.connectTarget {
				line = "→ " + line
			}
		}
		if i == s.selected && s.mode != flowModeConnect {
			parts = append(parts, selectedStyle.Render("▸ "+line))
		} else {
			parts = append(parts, normalStyle.Render("  "+line))
		}
		if i == s.selected {
			parts = append(parts, detailStyle.Render("→ "+truncate(n.Entry.BotResponse, 42)))
			if n.Entry.Action != nil && n.Entry.Action.Type != botapi.ActionNone {
				parts = append(parts, detailStyle.Render(fmt.Sprintf("⚡ %s: %s", n.Entry.Action.Type, truncate(n.Entry.Action.Value, 34))))
			}
		}
	}

	if len(edges) > 0 {
		parts = append(parts, "")
		edgeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted))
		for _, e := range edges {
			parts = append(parts, edgeStyle.Render(fmt.Sprintf("  %s ─→ %s", e.Source, e.Target)))
		}
	}

	if s.err != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).Bold(true)
		parts = append(parts, "", errStyle.Render("✗ "+s.err))
	}

	hint := renderHintBar("a", "agregar", "e", "editar", "c", "conectar", "d", "borrar", "p", "probar")
	if s.mode == flowModeConnect {
		hint = renderHintBar("↑↓", "elegir destino", "enter", "conectar", "esc", "cancelar")
	}
	parts = append(parts, "", hint)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *FlowStep) renderEditor() string {
	t := theme.Current()

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase))
	focusedLabel := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Bold(true)

	label := func(slot int, text string) string {
		if s.nodeFocus == slot {
			return focusedLabel.Render("▸ " + text)
		}
		return labelStyle.Render("  " + text)
	}

	actionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase))
	if s.nodeFocus == nodeFocusActionType {
		actionStyle = actionStyle.Foreground(lipgloss.Color(t.Primary)).Bold(true)
	}
	actionName := map[botapi.ActionType]string{
		botapi.ActionNone:         "ninguna",
		botapi.ActionPaymentLink:  "link de pago",
		botapi.ActionScheduleLink: "link de agenda",
	}[actionTypes[s.actionIdx]]

	title := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)).Bold(true).
		Render("Editando nodo " + s.editingID)

	parts := []string{
		title,
		"",
		label(nodeFocusUserMessage, "Mensaje del usuario"),
		s.userMsg.View(),
		"",
		label(nodeFocusBotResponse, "Respuesta del bot"),
		s.botResp.View(),
		"",
		label(nodeFocusCondition, "Condición"),
		s.condition.View(),
		"",
		label(nodeFocusActionType, "Acción"),
		actionStyle.Render("◀ " + actionName + " ▶"),
	}
	if actionTypes[s.actionIdx] != botapi.ActionNone {
		parts = append(parts,
			"",
			label(nodeFocusActionValue, "Valor"),
			s.actionValue.View(),
		)
	}
	parts = append(parts, "", renderHintBar("tab", "campo", "esc", "guardar y volver"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *FlowStep) renderPreviewPane() string {
	t := theme.Current()

	title := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)).Bold(true).
		Render("Vista previa del chat")

	userStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info))
	botStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase))

	parts := []string{title, ""}
	if len(s.transcript) == 0 && !s.previewBusy {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)).
			Render("Envía un mensaje para probar tu chatbot."))
	}
	for _, line := range s.transcript {
		if line.Role == "user" {
			parts = append(parts, userStyle.Render("Tú: "+line.Text))
		} else {
			parts = append(parts, botStyle.Render("Bot: "+line.Text))
		}
	}
	if s.previewBusy {
		parts = append(parts, s.spinner.View()+" pensando...")
	}

	parts = append(parts, "", s.previewInput.View(), "",
		renderHintBar("enter", "enviar", "esc", "volver al editor"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SetSize updates the size of the flow step.
func (s *FlowStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	inputWidth := width - 4
	if inputWidth < 30 {
		inputWidth = 30
	}
	s.previewInput.SetWidth(inputWidth)
}

// Focus returns focus to the node list.
func (s *FlowStep) Focus() {
	if s.mode == flowModePreview {
		s.previewInput.Focus()
	}
}

// Blur drops focus from inner inputs.
func (s *FlowStep) Blur() {
	s.previewInput.Blur()
}

// Submit advances to the finalize step. Editing state is flushed first so a
// half-open editor never loses input.
func (s *FlowStep) Submit() tea.Cmd {
	if s.mode == flowModeEdit {
		s.saveEditor()
		s.mode = flowModeList
	}
	return func() tea.Msg {
		return FlowsDoneMsg{}
	}
}
