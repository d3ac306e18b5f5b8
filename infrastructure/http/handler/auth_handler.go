package handler

import (
	"log/slog"
	"net/http"
	"time"

	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/services"
)

// CookieConfig controls the JWT cookie written at login.
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

type AuthHandler struct {
	service services.IAuthService
	cookie  CookieConfig
	log     *slog.Logger
}

func NewAuthHandler(service services.IAuthService, cookie CookieConfig, log *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie, log: log}
}

// Signup registers a new identity.
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	identity, err := h.service.Register(req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// Login answers {token, user} and sets the JWT cookie.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	result, err := h.service.Authenticate(req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, result)
}

// Logout marks the principal offline and clears the cookie.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.ErrUnauthenticated)
		return
	}
	if err := h.service.InvalidateSession(r.Context(), identity.Username); err != nil {
		writeError(w, h.log, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// CurrentUser returns the principal.
// GET /auth/current-user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, err := h.service.CurrentIdentity(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// OnlineUsers lists present usernames, sorted.
// GET /users/online
func (h *AuthHandler) OnlineUsers(w http.ResponseWriter, _ *http.Request) {
	usernames := h.service.ListOnlineUsernames()
	if usernames == nil {
		usernames = []string{}
	}
	writeJSON(w, http.StatusOK, usernames)
}
