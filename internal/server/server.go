package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thinkscotty/minutes/internal/config"
	"github.com/thinkscotty/minutes/internal/models"
	"github.com/thinkscotty/minutes/internal/pipeline"
)

// Processor runs one pipeline per request.
type Processor interface {
	ProcessTranscript(ctx context.Context, req pipeline.TranscriptRequest) (*pipeline.Result, error)
	ProcessAudio(ctx context.Context, req pipeline.AudioRequest) (*pipeline.Result, error)
}

// SessionStore persists site login sessions.
type SessionStore interface {
	CreateSession(sess *models.Session) error
	GetSession(token string) (models.Session, error)
	DeleteSession(token string) error
}

type Server struct {
	cfg      config.Config
	sessions SessionStore
	proc     Processor
	version  string
	httpSrv  *http.Server
}

func New(cfg config.Config, sessions SessionStore, proc Processor, version string) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		proc:     proc,
		version:  version,
	}
}

// Start sets up routes and starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	slog.Info("Starting server", "addr", addr, "version", s.version)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the full router with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID, middleware.RealIP, loggingMiddleware, middleware.Recoverer, s.siteGate)

	// Pages
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
	})
	r.Get("/upload", s.handleUploadPage)
	r.Get("/login", s.handleLoginPage)

	// Site login
	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/logout", s.handleLogout)

	// Processing API, reachable with and without the /api prefix
	for _, prefix := range []string{"", "/api"} {
		r.Get(prefix+"/process-transcript", s.handleTranscriptHealth)
		r.Post(prefix+"/process-transcript", s.handleProcessTranscript)
		r.Get(prefix+"/process-audio", s.handleAudioHealth)
		r.Post(prefix+"/process-audio", s.handleProcessAudio)
	}

	return r
}
