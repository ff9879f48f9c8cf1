package server

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with an ID, reusing one sent by the caller.
// The ID is stored where middleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelDebug
		if isAPIPath(r.URL.Path) && r.Method == http.MethodPost {
			level = slog.LevelInfo
		}
		slog.Log(r.Context(), level, "request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}

// siteGate sends visitors without a site session to /login when the site
// password is enabled. The processing API has its own password and is not
// gated.
func (s *Server) siteGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.Site.PasswordEnabled {
			next.ServeHTTP(w, r)
			return
		}

		p := r.URL.Path
		if isAPIPath(p) || strings.HasPrefix(p, "/api/auth/") || path.Ext(p) != "" {
			next.ServeHTTP(w, r)
			return
		}

		authed := s.hasSession(r)
		switch {
		case p == "/login" && authed:
			http.Redirect(w, r, "/", http.StatusSeeOther)
		case p == "/login" || authed:
			next.ServeHTTP(w, r)
		default:
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		}
	})
}

func (s *Server) hasSession(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" || s.sessions == nil {
		return false
	}
	_, err = s.sessions.GetSession(cookie.Value)
	return err == nil
}

func isAPIPath(p string) bool {
	p = strings.TrimPrefix(p, "/api")
	return p == "/process-transcript" || p == "/process-audio"
}
