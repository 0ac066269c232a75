package draft

import (
	"strings"
	"testing"

	"github.com/quantumweb/botstudio/internal/botapi"
)

func TestValidateWhatsApp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty is valid", "", false},
		{"ten digits", "+1234567890", false},
		{"fifteen digits", "+123456789012345", false},
		{"missing plus", "1234567890", true},
		{"too short", "+123", true},
		{"sixteen digits", "+1234567890123456", true},
		{"nine digits", "+123456789", true},
		{"letters", "+12345abcde", true},
		{"plus in the middle", "12+34567890", true},
		{"trailing space", "+1234567890 ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWhatsApp(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateWhatsApp(%q) expected error, got nil", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateWhatsApp(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestValidateMenuJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty is valid", "", false},
		{"simple object", `{"a":1}`, false},
		{"array", `[1,2,3]`, false},
		{"nested", `{"menu":{"tacos":35}}`, false},
		{"unquoted key", `{a:1}`, true},
		{"trailing comma", `{"a":1,}`, true},
		{"plain text", "no es json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMenuJSON(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateMenuJSON(%q) expected error, got nil", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateMenuJSON(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestMenuJSONErrorClearsOnCorrection(t *testing.T) {
	// The error state is a pure function of the text: invalid, then fixed.
	if err := ValidateMenuJSON(`{a:1}`); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if err := ValidateMenuJSON(`{"a":1}`); err != nil {
		t.Errorf("error should clear once text is valid JSON: %v", err)
	}
	if err := ValidateMenuJSON(""); err != nil {
		t.Errorf("error should clear once text is emptied: %v", err)
	}
}

func TestStep1Gate(t *testing.T) {
	tests := []struct {
		name    string
		dName   string
		purpose string
		want    bool
	}{
		{"both set", "Soporte", "ventas", true},
		{"empty name", "", "ventas", false},
		{"empty purpose", "Soporte", "", false},
		{"whitespace name", "   ", "ventas", false},
		{"whitespace purpose", "Soporte", "\t ", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New("amigable")
			d.Name = tt.dName
			d.Purpose = tt.purpose
			if got := d.Step1Valid(); got != tt.want {
				t.Errorf("Step1Valid() = %v, want %v", got, tt.want)
			}
			// Re-evaluating without changing fields must not flip the gate.
			if got := d.Step1Valid(); got != tt.want {
				t.Errorf("Step1Valid() not idempotent")
			}
		})
	}
}

func TestCanFinalize(t *testing.T) {
	d := New("amigable")
	d.Name = "Soporte"
	d.Purpose = "ventas"

	if !d.CanFinalize() {
		t.Fatal("valid draft should be finalizable")
	}

	d.WhatsAppNumber = "123"
	if d.CanFinalize() {
		t.Error("invalid whatsapp number must block finalize")
	}
	d.WhatsAppNumber = "+5215555555555"

	d.MenuJSON = "{broken"
	if d.CanFinalize() {
		t.Error("invalid menu JSON must block finalize")
	}
	d.MenuJSON = `{"menu":[]}`

	if !d.CanFinalize() {
		t.Error("corrected draft should be finalizable again")
	}
}

func TestNewStartsWithOneBlankFlow(t *testing.T) {
	d := New("amigable")
	if len(d.Flows) != 1 {
		t.Fatalf("expected 1 initial flow entry, got %d", len(d.Flows))
	}
	if d.Flows[0].UserMessage != "" || d.Flows[0].BotResponse != "" {
		t.Error("initial flow entry should be blank")
	}
}

func TestNewFallsBackToDefaultTone(t *testing.T) {
	if d := New("sarcástico"); d.Tone != DefaultTone {
		t.Errorf("unknown tone should fall back to %q, got %q", DefaultTone, d.Tone)
	}
	if d := New("serio"); d.Tone != "serio" {
		t.Errorf("known tone should be kept, got %q", d.Tone)
	}
}

func TestPayloadPicksAuthoritativeFlows(t *testing.T) {
	d := New("amigable")
	d.Name = "Soporte"
	d.Purpose = "ventas"
	d.Flows = []botapi.FlowEntry{{UserMessage: "plano", BotResponse: "lista plana"}}

	graph := []botapi.FlowEntry{{UserMessage: "grafo", BotResponse: "del editor"}}

	flat := d.Payload(graph, false)
	if flat.Flows[0].UserMessage != "plano" {
		t.Errorf("untouched graph: flat list must win, got %q", flat.Flows[0].UserMessage)
	}

	fromGraph := d.Payload(graph, true)
	if fromGraph.Flows[0].UserMessage != "grafo" {
		t.Errorf("touched graph must be authoritative, got %q", fromGraph.Flows[0].UserMessage)
	}
}

func TestPayloadTrimsNameAndPurpose(t *testing.T) {
	d := New("amigable")
	d.Name = "  Soporte  "
	d.Purpose = " ventas "

	p := d.Payload(nil, false)
	if p.Name != "Soporte" || p.Purpose != "ventas" {
		t.Errorf("payload should trim name/purpose, got %q / %q", p.Name, p.Purpose)
	}
}

func TestApplyTemplate(t *testing.T) {
	d := New("amigable")
	tpl := botapi.Template{
		ID:      4,
		Name:    "Restaurante",
		Tone:    "divertido",
		Purpose: "pedidos",
		Flows: []botapi.FlowEntry{
			{UserMessage: "menú", BotResponse: "Aquí está el menú"},
			{UserMessage: "horario", BotResponse: "Abrimos a las 9"},
		},
	}

	d.ApplyTemplate(tpl)

	if d.Tone != "divertido" || d.Purpose != "pedidos" {
		t.Errorf("template tone/purpose not applied: %q / %q", d.Tone, d.Purpose)
	}
	if len(d.Flows) != 2 || d.Flows[0].UserMessage != "menú" {
		t.Errorf("template flows not applied in order: %+v", d.Flows)
	}
	if d.SelectedTemplateID == nil || *d.SelectedTemplateID != 4 {
		t.Error("selected template id not recorded")
	}
}

func TestFromBot(t *testing.T) {
	b := botapi.Bot{
		ID:             9,
		Name:           "Agenda",
		Tone:           "profesional",
		Purpose:        "citas",
		WhatsAppNumber: "+5215511112222",
		MenuJSON:       `{"servicios":[]}`,
	}

	d := FromBot(b)

	if d.EditingBotID == nil || *d.EditingBotID != 9 {
		t.Fatal("editing bot id not seeded")
	}
	if d.Name != "Agenda" || d.Tone != "profesional" {
		t.Errorf("scalar fields not seeded: %+v", d)
	}
	if len(d.Flows) != 1 {
		t.Errorf("bot without flows should start from one blank entry, got %d", len(d.Flows))
	}
}

func TestResetClearsEverything(t *testing.T) {
	d := New("amigable")
	d.Name = "Soporte"
	d.Purpose = "ventas"
	d.WhatsAppNumber = "+5215555555555"
	id := 3
	d.EditingBotID = &id

	d.Reset("amigable")

	if d.Dirty() {
		t.Error("reset draft should not be dirty")
	}
	if d.EditingBotID != nil || d.SelectedTemplateID != nil {
		t.Error("reset draft should not reference a bot or template")
	}
	if len(d.Flows) != 1 {
		t.Errorf("reset draft should have one blank flow, got %d", len(d.Flows))
	}
}

func TestValidateStruct(t *testing.T) {
	d := New("amigable")
	d.Name = "Soporte"
	d.Purpose = "ventas"
	if err := d.Validate(); err != nil {
		t.Errorf("valid draft failed struct validation: %v", err)
	}

	d.Tone = "agresivo"
	if err := d.Validate(); err == nil {
		t.Error("unknown tone should fail struct validation")
	}
	d.Tone = "amigable"

	d.WhatsAppNumber = strings.Repeat("9", 12)
	if err := d.Validate(); err == nil {
		t.Error("whatsapp number without + should fail struct validation")
	}
}
