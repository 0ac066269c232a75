package botwizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/draft"
)

func validFinalizeDraft() *draft.Draft {
	return &draft.Draft{Name: "Bot", Tone: "amigable", Purpose: "ayudar"}
}

func TestFinalizeSubmitBlockedOnInvalidFields(t *testing.T) {
	tests := []struct {
		name     string
		whatsapp string
		menu     string
		wantMsg  bool
	}{
		{"all optional empty", "", "", true},
		{"valid whatsapp", "+5215512345678", "", true},
		{"whatsapp missing plus", "5215512345678", "", false},
		{"whatsapp too short", "+123", "", false},
		{"valid menu json", "", `{"tacos": 45}`, true},
		{"broken menu json", "", `{tacos: 45}`, false},
		{"both invalid", "abc", "{", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFinalizeStep(validFinalizeDraft())
			s.whatsapp.SetValue(tt.whatsapp)
			s.menu.SetValue(tt.menu)

			cmd := s.Submit()
			if tt.wantMsg {
				require.NotNil(t, cmd)
				_, ok := cmd().(FinalizeRequestMsg)
				assert.True(t, ok)
			} else {
				assert.Nil(t, cmd)
				assert.True(t, s.whatsappErr != "" || s.menuErr != "")
			}
		})
	}
}

func TestFinalizeErrorsClearOnCorrection(t *testing.T) {
	s := NewFinalizeStep(validFinalizeDraft())
	s.whatsapp.SetValue("no-es-numero")
	require.Nil(t, s.Submit())
	require.NotEmpty(t, s.whatsappErr)

	// Correcting the input clears the error on the next revalidation.
	s.whatsapp.SetValue("+5215512345678")
	s.sync()
	s.revalidate()
	assert.Empty(t, s.whatsappErr)
}

func TestFinalizeSubmitBlockedWhileUploading(t *testing.T) {
	s := NewFinalizeStep(validFinalizeDraft())
	s.uploading = true
	assert.Nil(t, s.Submit())
}

func TestUploadResultFillsDraftURL(t *testing.T) {
	d := validFinalizeDraft()
	s := NewFinalizeStep(d)
	s.uploading = true

	s.Update(UploadResultMsg{Kind: botapi.FilePDF, URL: "https://cdn.example.mx/menu.pdf"})

	assert.False(t, s.uploading)
	assert.Equal(t, "https://cdn.example.mx/menu.pdf", d.PDFURL)
	assert.Empty(t, s.uploadErr)
}

func TestUploadFailureKeepsDraftAndShowsMessage(t *testing.T) {
	d := validFinalizeDraft()
	s := NewFinalizeStep(d)
	s.uploading = true

	s.Update(UploadResultMsg{Kind: botapi.FileImage, Err: &botapi.APIError{Status: 400, Message: "Tipo de archivo no permitido"}})

	assert.False(t, s.uploading)
	assert.Empty(t, d.ImageURL)
	assert.Equal(t, "Tipo de archivo no permitido", s.uploadErr)
	assert.Equal(t, float64(-1), s.uploadFraction[botapi.FileImage])
}

func TestUploadProgressTracked(t *testing.T) {
	s := NewFinalizeStep(validFinalizeDraft())
	s.Update(UploadProgressMsg{Kind: botapi.FilePDF, Fraction: 0.25})
	assert.Equal(t, 0.25, s.uploadFraction[botapi.FilePDF])
	s.Update(UploadProgressMsg{Kind: botapi.FilePDF, Fraction: 0.8})
	assert.Equal(t, 0.8, s.uploadFraction[botapi.FilePDF])
}

func TestMenuEditedReplacesContent(t *testing.T) {
	d := validFinalizeDraft()
	s := NewFinalizeStep(d)

	s.Update(MenuEditedMsg{Content: "{\"tacos\": 45}\n"})

	assert.Equal(t, `{"tacos": 45}`, s.menu.Value())
	assert.Equal(t, `{"tacos": 45}`, d.MenuJSON)
}

func TestConnectOnlyForPersistedBots(t *testing.T) {
	created := validFinalizeDraft()
	s := NewFinalizeStep(created)
	assert.False(t, s.canConnect)

	id := 9
	editing := validFinalizeDraft()
	editing.EditingBotID = &id
	s = NewFinalizeStep(editing)
	assert.True(t, s.canConnect)
}
