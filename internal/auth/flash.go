package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookie = "blogz_flash"

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice shown on the page after a redirect.
type Flash struct {
	Kind    string
	Message string
}

func SetFlash(w http.ResponseWriter, kind, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(kind + "\x00" + msg)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// PopFlash returns the pending flash, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(string(raw), "\x00")
	if !ok || msg == "" {
		return nil
	}
	if kind != FlashSuccess {
		kind = FlashError
	}
	return &Flash{Kind: kind, Message: msg}
}
