package api

import (
	"encoding/json"
	"net/http"
	"time"
)

const (
	flashCookieName = "bookbazaar_flash"
	flashPurpose    = "bookbazaar-flash"
	flashTTL        = 5 * time.Minute
)

// maxFlashPayloadBytes keeps the sealed cookie under the browser limit.
const maxFlashPayloadBytes = 2400

// Flash levels.
const (
	flashSuccess = "success"
	flashError   = "error"
)

// Flash is a one-shot message carried across a redirect in a cookie. It
// is shown by the next page rendered and then cleared. The cookie is a
// PASETO v4.local token, so clients cannot forge or read it.
type Flash struct {
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
}

func (s *Server) setFlash(w http.ResponseWriter, f *Flash) {
	if s.tokens == nil {
		return
	}
	if data, err := json.Marshal(f); err == nil && len(data) > maxFlashPayloadBytes {
		// Drop the echoed input rather than the message.
		trimmed := *f
		trimmed.Values = nil
		f = &trimmed
	}

	value, err := s.tokens.SealValue(flashPurpose, f, flashTTL)
	if err != nil {
		s.logger.Warn("failed to seal flash", "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash cookie. A forged, expired or
// malformed cookie is cleared and ignored.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if s.tokens == nil {
		return nil
	}
	var f Flash
	if err := s.tokens.OpenValue(flashPurpose, cookie.Value, &f); err != nil {
		return nil
	}
	return &f
}
