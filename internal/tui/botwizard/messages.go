package botwizard

import (
	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/preview"
)

// BasicsDoneMsg is sent when step 1 passes validation and the user advances.
type BasicsDoneMsg struct{}

// TemplatesLoadedMsg carries the server template list for step 2.
type TemplatesLoadedMsg struct {
	Templates []botapi.Template
}

// TemplatesErrorMsg is sent when the template fetch fails. The step stays
// usable: the user can skip.
type TemplatesErrorMsg struct {
	Err error
}

// TemplateAppliedMsg is sent when the user confirms a template. Application
// is destructive: draft and graph are replaced.
type TemplateAppliedMsg struct {
	Template botapi.Template
}

// TemplateSkippedMsg is sent when the user advances without a template.
type TemplateSkippedMsg struct{}

// FlowsDoneMsg is sent when the user advances from the flow editor.
type FlowsDoneMsg struct{}

// PreviewRequestMsg asks the wizard to run an ephemeral preview exchange.
type PreviewRequestMsg struct {
	Message string
}

// PreviewResultMsg carries a finished preview exchange. Gen is the wizard
// generation at dispatch; stale results are dropped.
type PreviewResultMsg struct {
	Gen   int
	Lines []preview.Line
	Err   error
}

// UploadRequestMsg asks the wizard to upload the file at Path.
type UploadRequestMsg struct {
	Kind botapi.FileKind
	Path string
}

// ConnectWhatsAppRequestMsg asks the wizard to link the number being edited.
type ConnectWhatsAppRequestMsg struct {
	Number string
}

// UploadProgressMsg reports upload progress as a 0..1 fraction. Sent from the
// upload goroutine through the program sender.
type UploadProgressMsg struct {
	Kind     botapi.FileKind
	Fraction float64
}

// UploadResultMsg carries the outcome of a file upload.
type UploadResultMsg struct {
	Kind botapi.FileKind
	URL  string
	Err  error
}

// MenuEditedMsg carries the menu JSON returned by the external editor.
type MenuEditedMsg struct {
	Content string
	Err     error
}

// ConnectWhatsAppResultMsg carries the outcome of a connect-whatsapp request.
type ConnectWhatsAppResultMsg struct {
	Gen     int
	Message string
	Err     error
}

// FinalizeRequestMsg is sent when the user triggers create/update from step 4.
type FinalizeRequestMsg struct{}

// FinalizeResultMsg carries the outcome of the create/update submission.
type FinalizeResultMsg struct {
	Gen     int
	Message string
	BotID   int
	Err     error
}

// TabExitForwardMsg is sent when Tab is pressed on the last input of a step.
type TabExitForwardMsg struct{}

// TabExitBackwardMsg is sent when Shift+Tab is pressed on the first input of a step.
type TabExitBackwardMsg struct{}
