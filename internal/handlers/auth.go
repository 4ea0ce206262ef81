package handlers

import (
	"net/http"

	"github.com/wavenation/wavenation/internal/auth"
)

// handleLogin exchanges the editorial password for a session token. The
// token is set as a cookie and returned for bearer use.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Password)
	if !ok {
		h.Log.Warn("Failed editorial login", "ip", clientIP(r))
		h.respondError(w, Unauthorized("Invalid password"))
		return
	}

	h.Auth.SetSessionCookie(w, token)
	respondOK(w, LoginResponse{Token: token, ExpiresIn: int(h.Auth.TTL().Seconds())})
}

// handleLogout revokes the session and clears the cookie
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		h.Auth.Logout(token)
	}
	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}
