package botapi

import (
	"errors"
	"fmt"
)

// ErrLoginRequired is returned on 401 responses. The caller should surface it
// and send the user back to the login flow.
var ErrLoginRequired = errors.New("login required")

// APIError is a business error: the backend answered non-2xx with a
// human-readable message. The message is surfaced verbatim as text; rich
// content arrives as a structured link, never as markup to interpolate.
type APIError struct {
	Status    int
	Message   string
	LinkURL   string
	LinkLabel string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("el servidor respondió %d", e.Status)
}

// QuotaExceededError is the distinguished 403/429 path on chat sends. It gets
// a dedicated upsell message instead of the generic business-error rendering.
type QuotaExceededError struct {
	Message string
	Quota   *Quota
}

func (e *QuotaExceededError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "límite de mensajes alcanzado"
}

// TransportError wraps network and decode failures. The raw cause is kept for
// logging; end users only ever see the generic localized message.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsQuotaExceeded reports whether err is the quota-exceeded path.
func IsQuotaExceeded(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}

// UserMessage maps an error from this package to the text shown to the end
// user. Transport detail never leaks; server business messages pass through
// verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "No pude conectar con el servidor. Intenta de nuevo."
	}
	if errors.Is(err, ErrLoginRequired) {
		return "Tu sesión expiró. Inicia sesión de nuevo."
	}
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return "Alcanzaste tu límite de mensajes. Mejora tu plan para seguir chateando."
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return err.Error()
}
