package botwizard

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/editor"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/draft"
	"github.com/quantumweb/botstudio/internal/tui/theme"
)

// Focus slots within the finalize step.
const (
	finalizeFocusWhatsApp = iota
	finalizeFocusMenu
	finalizeFocusPDF
	finalizeFocusImage
	finalizeFocusCount
)

// FinalizeStep handles step 4: WhatsApp number, menu JSON, file uploads and
// the final submission gate. The actual create/update request is dispatched
// by the wizard; this step validates and syncs the draft.
type FinalizeStep struct {
	draft *draft.Draft

	whatsapp  textinput.Model
	menu      textarea.Model
	pdfPath   textinput.Model
	imagePath textinput.Model

	focus       int
	whatsappErr string
	menuErr     string
	uploadErr   string

	// Upload state, keyed by file kind. A fraction of -1 means no upload
	// has been started for that kind.
	uploadFraction map[botapi.FileKind]float64
	uploading      bool

	connectResult string
	tmpFile       string

	canConnect bool // Only persisted bots can link a number
	width      int
	height     int
}

// NewFinalizeStep creates the finalize step seeded from the draft.
func NewFinalizeStep(d *draft.Draft) *FinalizeStep {
	wa := textinput.New()
	wa.Placeholder = "+521234567890"
	wa.CharLimit = 20
	wa.SetValue(d.WhatsAppNumber)
	wa.Focus()

	menu := textarea.New()
	menu.Placeholder = `{"tacos": 45, "quesadillas": 60}`
	menu.CharLimit = 10000
	menu.SetHeight(4)
	menu.SetWidth(60)
	menu.SetValue(d.MenuJSON)

	pdf := textinput.New()
	pdf.Placeholder = "ruta a un PDF, ej. ./menu.pdf"
	pdf.CharLimit = 500

	img := textinput.New()
	img.Placeholder = "ruta a una imagen, ej. ./logo.png"
	img.CharLimit = 500

	return &FinalizeStep{
		draft:     d,
		whatsapp:  wa,
		menu:      menu,
		pdfPath:   pdf,
		imagePath: img,
		uploadFraction: map[botapi.FileKind]float64{
			botapi.FilePDF:   -1,
			botapi.FileImage: -1,
		},
		canConnect: d.EditingBotID != nil,
	}
}

// Init initializes the finalize step.
func (s *FinalizeStep) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the finalize step.
func (s *FinalizeStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case UploadProgressMsg:
		s.uploadFraction[msg.Kind] = msg.Fraction
		return nil

	case UploadResultMsg:
		s.uploading = false
		if msg.Err != nil {
			s.uploadFraction[msg.Kind] = -1
			s.uploadErr = botapi.UserMessage(msg.Err)
			return nil
		}
		s.uploadErr = ""
		s.uploadFraction[msg.Kind] = 1
		switch msg.Kind {
		case botapi.FilePDF:
			s.draft.PDFURL = msg.URL
		case botapi.FileImage:
			s.draft.ImageURL = msg.URL
		}
		return nil

	case MenuEditedMsg:
		if s.tmpFile != "" {
			_ = os.Remove(s.tmpFile)
			s.tmpFile = ""
		}
		if msg.Err == nil {
			s.menu.SetValue(strings.TrimSpace(msg.Content))
			s.sync()
			s.revalidate()
		}
		return nil

	case ConnectWhatsAppResultMsg:
		if msg.Err != nil {
			s.connectResult = botapi.UserMessage(msg.Err)
		} else {
			s.connectResult = msg.Message
		}
		return nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab":
			if s.focus == finalizeFocusCount-1 {
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
		case "ctrl+e":
			if s.focus == finalizeFocusMenu {
				return s.openEditor()
			}
			return nil
		case "ctrl+u":
			return s.startUpload()
		case "ctrl+w":
			if s.canConnect {
				number := strings.TrimSpace(s.whatsapp.Value())
				if err := draft.ValidateWhatsApp(number); err != nil || number == "" {
					s.whatsappErr = "Ingresa un número válido antes de conectar"
					return nil
				}
				return func() tea.Msg {
					return ConnectWhatsAppRequestMsg{Number: number}
				}
			}
			return nil
		case "enter":
			if s.focus == finalizeFocusWhatsApp || s.focus == finalizeFocusPDF || s.focus == finalizeFocusImage {
				s.setFocus((s.focus + 1) % finalizeFocusCount)
				return nil
			}
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case finalizeFocusWhatsApp:
		s.whatsapp, cmd = s.whatsapp.Update(msg)
	case finalizeFocusMenu:
		s.menu, cmd = s.menu.Update(msg)
	case finalizeFocusPDF:
		s.pdfPath, cmd = s.pdfPath.Update(msg)
	case finalizeFocusImage:
		s.imagePath, cmd = s.imagePath.Update(msg)
	}
	s.sync()
	s.revalidate()
	return cmd
}

// sync writes input values back into the draft.
func (s *FinalizeStep) sync() {
	s.draft.WhatsAppNumber = strings.TrimSpace(s.whatsapp.Value())
	s.draft.MenuJSON = strings.TrimSpace(s.menu.Value())
}

// revalidate clears field errors as soon as the input becomes valid again.
func (s *FinalizeStep) revalidate() {
	if s.whatsappErr != "" && draft.ValidateWhatsApp(s.draft.WhatsAppNumber) == nil {
		s.whatsappErr = ""
	}
	if s.menuErr != "" && draft.ValidateMenuJSON(s.draft.MenuJSON) == nil {
		s.menuErr = ""
	}
}

// startUpload validates the focused path slot and asks the wizard to upload.
func (s *FinalizeStep) startUpload() tea.Cmd {
	var kind botapi.FileKind
	var path string
	switch s.focus {
	case finalizeFocusPDF:
		kind, path = botapi.FilePDF, strings.TrimSpace(s.pdfPath.Value())
	case finalizeFocusImage:
		kind, path = botapi.FileImage, strings.TrimSpace(s.imagePath.Value())
	default:
		return nil
	}
	if path == "" || s.uploading {
		return nil
	}
	s.uploading = true
	s.uploadErr = ""
	s.uploadFraction[kind] = 0
	return func() tea.Msg {
		return UploadRequestMsg{Kind: kind, Path: path}
	}
}

// openEditor launches $EDITOR with the menu JSON in a temp file.
func (s *FinalizeStep) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "botstudio_menu_*.json")
	if err != nil {
		return nil
	}
	if _, err := tmpfile.WriteString(s.menu.Value()); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	s.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("botstudio", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return MenuEditedMsg{Err: err}
		}
		content, err := os.ReadFile(tmpfile.Name())
		if err != nil {
			return MenuEditedMsg{Err: err}
		}
		return MenuEditedMsg{Content: string(content)}
	})
}

// View renders the finalize step content.
func (s *FinalizeStep) View() string {
	t := theme.Current()

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase))
	focusedLabel := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).Bold(true)
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted))

	label := func(slot int, text string) string {
		if s.focus == slot {
			return focusedLabel.Render("▸ " + text)
		}
		return labelStyle.Render("  " + text)
	}

	uploadLine := func(kind botapi.FileKind, url string) string {
		frac := s.uploadFraction[kind]
		switch {
		case url != "":
			return okStyle.Render("✓ subido: " + truncate(url, 48))
		case frac >= 0 && s.uploading:
			return mutedStyle.Render(fmt.Sprintf("subiendo... %d%%", int(frac*100)))
		default:
			return mutedStyle.Render("ctrl+u para subir")
		}
	}

	parts := []string{
		label(finalizeFocusWhatsApp, "Número de WhatsApp (opcional)"),
		s.whatsapp.View(),
	}
	if s.whatsappErr != "" {
		parts = append(parts, errStyle.Render("✗ "+s.whatsappErr))
	}
	if s.canConnect {
		parts = append(parts, mutedStyle.Render("ctrl+w para conectar WhatsApp"))
	}
	if s.connectResult != "" {
		parts = append(parts, okStyle.Render(s.connectResult))
	}

	parts = append(parts,
		"",
		label(finalizeFocusMenu, "Menú en JSON (opcional, ctrl+e para editor)"),
		s.menu.View(),
	)
	if s.menuErr != "" {
		parts = append(parts, errStyle.Render("✗ "+s.menuErr))
	}

	parts = append(parts,
		"",
		label(finalizeFocusPDF, "PDF del negocio (opcional)"),
		s.pdfPath.View(),
		uploadLine(botapi.FilePDF, s.draft.PDFURL),
		"",
		label(finalizeFocusImage, "Imagen (opcional)"),
		s.imagePath.View(),
		uploadLine(botapi.FileImage, s.draft.ImageURL),
	)

	if s.uploadErr != "" {
		parts = append(parts, "", errStyle.Render("✗ "+s.uploadErr))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SetSize updates the size of the finalize step.
func (s *FinalizeStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	inputWidth := width - 4
	if inputWidth < 30 {
		inputWidth = 30
	}
	s.whatsapp.SetWidth(inputWidth)
	s.menu.SetWidth(inputWidth)
	s.pdfPath.SetWidth(inputWidth)
	s.imagePath.SetWidth(inputWidth)
}

// Focus focuses the first input.
func (s *FinalizeStep) Focus() {
	s.setFocus(finalizeFocusWhatsApp)
}

// FocusLast focuses the last input.
func (s *FinalizeStep) FocusLast() {
	s.setFocus(finalizeFocusImage)
}

// Blur blurs all inputs.
func (s *FinalizeStep) Blur() {
	s.blurAll()
}

// Submit validates whatsapp and menu JSON; when clean it emits the finalize
// request. An upload in flight blocks submission.
func (s *FinalizeStep) Submit() tea.Cmd {
	s.sync()
	if s.uploading {
		return nil
	}

	valid := true
	if err := draft.ValidateWhatsApp(s.draft.WhatsAppNumber); err != nil {
		s.whatsappErr = err.Error()
		valid = false
	}
	if err := draft.ValidateMenuJSON(s.draft.MenuJSON); err != nil {
		s.menuErr = err.Error()
		valid = false
	}
	if !valid {
		return nil
	}

	s.whatsappErr = ""
	s.menuErr = ""
	return func() tea.Msg {
		return FinalizeRequestMsg{}
	}
}

func (s *FinalizeStep) setFocus(slot int) {
	s.blurAll()
	s.focus = slot
	switch slot {
	case finalizeFocusWhatsApp:
		s.whatsapp.Focus()
	case finalizeFocusMenu:
		s.menu.Focus()
	case finalizeFocusPDF:
		s.pdfPath.Focus()
	case finalizeFocusImage:
		s.imagePath.Focus()
	}
}

func (s *FinalizeStep) blurAll() {
	s.whatsapp.Blur()
	s.menu.Blur()
	s.pdfPath.Blur()
	s.imagePath.Blur()
}
