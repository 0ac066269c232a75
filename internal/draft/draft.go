// Package draft holds the in-progress chatbot configuration the wizard edits,
// and the validation rules that gate navigation and submission.
package draft

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/quantumweb/botstudio/internal/botapi"
)

// Tones are the chatbot voices the backend understands.
var Tones = []string{"amigable", "profesional", "divertido", "serio"}

// DefaultTone is used when the configured tone is not one of Tones.
const DefaultTone = "amigable"

var whatsappRe = regexp.MustCompile(`^\+\d{10,15}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// The whatsapp rule mirrors ValidateWhatsApp for struct-level checks.
	_ = v.RegisterValidation("whatsapp", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || whatsappRe.MatchString(s)
	})
	return v
}

// Draft is the full in-progress configuration. It is created empty at step 1,
// mutated field by field through the steps, and submitted whole on finalize.
type Draft struct {
	Name           string `validate:"required"`
	Tone           string `validate:"oneof=amigable profesional divertido serio"`
	Purpose        string `validate:"required"`
	WhatsAppNumber string `validate:"whatsapp"`
	BusinessInfo   string
	PDFURL         string `validate:"omitempty,url"`
	ImageURL       string `validate:"omitempty,url"`
	MenuJSON       string `validate:"omitempty,json"`

	// Flows is the flat entry list. Once the graph editor has been touched
	// the graph becomes authoritative and this list is only a fallback.
	Flows []botapi.FlowEntry

	SelectedTemplateID *int
	EditingBotID       *int
}

// New returns an empty draft. The flow list always starts with one blank
// entry; editing never drops below one.
func New(tone string) *Draft {
	if !ValidTone(tone) {
		tone = DefaultTone
	}
	return &Draft{
		Tone:  tone,
		Flows: []botapi.FlowEntry{{}},
	}
}

// FromBot seeds a draft from a persisted bot for editing. Flow reconstruction
// is best-effort: bots persisted with flows get them back as the flat list,
// everything else starts from a single blank entry.
func FromBot(b botapi.Bot) *Draft {
	d := New(b.Tone)
	d.Name = b.Name
	d.Purpose = b.Purpose
	d.WhatsAppNumber = b.WhatsAppNumber
	d.BusinessInfo = b.BusinessInfo
	d.PDFURL = b.PDFURL
	d.ImageURL = b.ImageURL
	d.MenuJSON = b.MenuJSON
	if len(b.Flows) > 0 {
		d.Flows = append([]botapi.FlowEntry(nil), b.Flows...)
	}
	id := b.ID
	d.EditingBotID = &id
	return d
}

// ValidTone reports whether tone is one of the known voices.
func ValidTone(tone string) bool {
	for _, t := range Tones {
		if t == tone {
			return true
		}
	}
	return false
}

// ValidateWhatsApp checks a channel number. Empty is valid (the field is
// optional); anything else must be a full "+" followed by 10-15 digits.
func ValidateWhatsApp(s string) error {
	if s == "" {
		return nil
	}
	if !whatsappRe.MatchString(s) {
		return fmt.Errorf("el número debe tener el formato +52155... (10 a 15 dígitos)")
	}
	return nil
}

// ValidateMenuJSON checks the menu text. Empty is valid; anything else must
// parse as JSON.
func ValidateMenuJSON(s string) error {
	if s == "" {
		return nil
	}
	if !json.Valid([]byte(s)) {
		return fmt.Errorf("el menú no es JSON válido")
	}
	return nil
}

// Step1Valid gates forward navigation out of the basics step: name and
// purpose must be non-blank.
func (d *Draft) Step1Valid() bool {
	return strings.TrimSpace(d.Name) != "" && strings.TrimSpace(d.Purpose) != ""
}

// CanFinalize reports whether the finalize action is allowed: the basics gate
// still holds and neither whatsapp number nor menu JSON is invalid.
func (d *Draft) CanFinalize() bool {
	return d.Step1Valid() &&
		ValidateWhatsApp(d.WhatsAppNumber) == nil &&
		ValidateMenuJSON(d.MenuJSON) == nil
}

// Validate runs the struct-level rules. The per-field functions above remain
// the source of truth for step gating; this is a last check before submission.
func (d *Draft) Validate() error {
	return validate.Struct(d)
}

// Payload builds the submission body. When the graph editor has been touched
// its entries are authoritative; otherwise the flat list is used.
func (d *Draft) Payload(graphEntries []botapi.FlowEntry, graphTouched bool) botapi.BotPayload {
	flows := d.Flows
	if graphTouched {
		flows = graphEntries
	}
	return botapi.BotPayload{
		Name:           strings.TrimSpace(d.Name),
		Tone:           d.Tone,
		Purpose:        strings.TrimSpace(d.Purpose),
		WhatsAppNumber: d.WhatsAppNumber,
		BusinessInfo:   d.BusinessInfo,
		PDFURL:         d.PDFURL,
		ImageURL:       d.ImageURL,
		MenuJSON:       d.MenuJSON,
		Flows:          flows,
		TemplateID:     d.SelectedTemplateID,
	}
}

// ApplyTemplate overwrites tone, purpose and the flat flow list from a
// template. Destructive on purpose; previewing happens elsewhere.
func (d *Draft) ApplyTemplate(t botapi.Template) {
	if ValidTone(t.Tone) {
		d.Tone = t.Tone
	}
	if t.Purpose != "" {
		d.Purpose = t.Purpose
	}
	if len(t.Flows) > 0 {
		d.Flows = append([]botapi.FlowEntry(nil), t.Flows...)
	} else {
		d.Flows = []botapi.FlowEntry{{}}
	}
	id := t.ID
	d.SelectedTemplateID = &id
}

// Reset returns the draft to its initial empty state after a successful
// submission.
func (d *Draft) Reset(tone string) {
	*d = *New(tone)
}

// Dirty reports whether the user has typed anything worth confirming before
// discarding.
func (d *Draft) Dirty() bool {
	if strings.TrimSpace(d.Name) != "" || strings.TrimSpace(d.Purpose) != "" ||
		d.BusinessInfo != "" || d.WhatsAppNumber != "" || d.MenuJSON != "" {
		return true
	}
	for _, f := range d.Flows {
		if f.UserMessage != "" || f.BotResponse != "" {
			return true
		}
	}
	return false
}
