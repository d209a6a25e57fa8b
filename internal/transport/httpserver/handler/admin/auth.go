package admin

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// SessionCookie carries the opaque admin session token.
const SessionCookie = "admin_session"

type loginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User      string    `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	if h.credentials.Password == "" {
		h.log.Error("admin.login: admin password not configured")
		writeError(w, http.StatusInternalServerError, "auth_not_configured", "admin auth not configured")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.User)), []byte(h.credentials.User)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.credentials.Password)) == 1
	if !userOK || !passOK {
		h.log.Warn("admin.login: invalid credentials", "user", req.User)
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	token, expiresAt, err := h.Sessions.Create(h.credentials.SessionTTL)
	if err != nil {
		h.log.InternalError("admin.login: create session failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.credentials.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.log.Info("admin logged in", "user", h.credentials.User)
	writeJSON(w, http.StatusOK, sessionResponse{User: h.credentials.User, ExpiresAt: expiresAt})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		h.Sessions.Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.credentials.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"user": h.credentials.User})
}
