package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/thinkscotty/minutes/internal/auth"
	"github.com/thinkscotty/minutes/internal/models"
)

const (
	sessionCookie = "site-auth"
	sessionTTL    = 7 * 24 * time.Hour
)

// isHTTPS checks if the original request was made over HTTPS by examining
// the X-Forwarded-Proto header (set by reverse proxies) or the TLS state.
func isHTTPS(r *http.Request) bool {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.TLS != nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if s.cfg.Site.Password == "" {
		slog.Error("Site password not configured")
		jsonError(w, "Site password not configured", http.StatusInternalServerError)
		return
	}
	if !auth.CheckSecret(body.Password, s.cfg.Site.Password) {
		slog.Debug("Login failed: wrong password", "ip", r.RemoteAddr)
		jsonError(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken()
	if err != nil {
		slog.Error("Failed to generate session token", "error", err)
		jsonError(w, "An error occurred during login", http.StatusInternalServerError)
		return
	}
	sess := &models.Session{Token: token, ExpiresAt: time.Now().Add(sessionTTL)}
	if err := s.sessions.CreateSession(sess); err != nil {
		slog.Error("Failed to create session", "error", err)
		jsonError(w, "An error occurred during login", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})

	slog.Info("Site login", "ip", r.RemoteAddr)
	jsonResponse(w, map[string]any{"success": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && s.sessions != nil {
		if err := s.sessions.DeleteSession(cookie.Value); err != nil {
			slog.Warn("Failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	jsonResponse(w, map[string]any{"success": true})
}
