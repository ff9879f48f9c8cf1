package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/thinkscotty/minutes/internal/auth"
	"github.com/thinkscotty/minutes/internal/failure"
	"github.com/thinkscotty/minutes/internal/pipeline"
	"github.com/thinkscotty/minutes/internal/transcribe"
)

const (
	passwordHeader       = "x-api-password"
	maxTranscriptBody    = 10 << 20
	multipartOverhead    = 1 << 20
	multipartMemoryLimit = 32 << 20
)

type imagePayload struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Credit string `json:"credit"`
}

type resultPayload struct {
	Title            string        `json:"title"`
	FilePath         string        `json:"filePath"`
	CommitHash       string        `json:"commitHash"`
	TranscriptLength *int          `json:"transcriptLength,omitempty"`
	PreviewContent   string        `json:"previewContent"`
	Image            *imagePayload `json:"image"`
}

func (s *Server) handleProcessTranscript(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Transcript string `json:"transcript"`
		Title      string `json:"title"`
		Password   string `json:"password"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxTranscriptBody)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	provided := body.Password
	if provided == "" {
		provided = r.Header.Get(passwordHeader)
	}
	if !s.checkAPIPassword(w, provided) {
		return
	}

	res, err := s.proc.ProcessTranscript(r.Context(), pipeline.TranscriptRequest{
		Transcript: body.Transcript,
		Title:      body.Title,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	jsonResponse(w, map[string]any{
		"success": true,
		"message": "Transcript processed and committed successfully",
		"data":    toPayload(res, false),
	})
}

func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	if !s.checkAPIPassword(w, r.Header.Get(passwordHeader)) {
		return
	}

	maxBytes := s.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes/1024/1024), http.StatusBadRequest)
			return
		}
		jsonError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	audio := transcribe.Audio{}
	file, header, err := r.FormFile("audio")
	if err == nil {
		defer file.Close()
		audio = transcribe.Audio{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        file,
		}
	}

	res, err := s.proc.ProcessAudio(r.Context(), pipeline.AudioRequest{
		Audio: audio,
		Title: r.FormValue("title"),
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	jsonResponse(w, map[string]any{
		"success": true,
		"message": "Audio processed and committed successfully",
		"data":    toPayload(res, true),
	})
}

func (s *Server) handleTranscriptHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{
		"status":    "ok",
		"message":   "Transcript processing API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleAudioHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{
		"status":           "ok",
		"message":          "Audio processing API is running",
		"maxFileSize":      fmt.Sprintf("%dMB", s.cfg.MaxUploadBytes()/1024/1024),
		"supportedFormats": transcribe.SupportedFormats,
		"timestamp":        time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// checkAPIPassword writes the error response and returns false when the
// processing password is unset or does not match.
func (s *Server) checkAPIPassword(w http.ResponseWriter, provided string) bool {
	if s.cfg.Site.TranscriptPassword == "" {
		jsonError(w, "API password not configured", http.StatusInternalServerError)
		return false
	}
	if !auth.CheckSecret(strings.TrimSpace(provided), s.cfg.Site.TranscriptPassword) {
		jsonError(w, "Invalid or missing password", http.StatusUnauthorized)
		return false
	}
	return true
}

// writeFailure maps a pipeline error to the single structured response
// returned for a failed run.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := failure.HTTPStatus(err)
	slog.Error("Processing failed",
		"request_id", middleware.GetReqID(r.Context()),
		"kind", failure.Kind(err),
		"status", status,
		"error", err)

	switch msg := failure.UserMessage(err); {
	case errors.Is(err, failure.ErrPublish):
		jsonErrorDetails(w, "Failed to commit to repository", err.Error(), status)
	case msg != "":
		jsonError(w, msg, status)
	default:
		jsonErrorDetails(w, "Internal server error", err.Error(), status)
	}
}

func toPayload(res *pipeline.Result, withLength bool) resultPayload {
	p := resultPayload{
		Title:          res.Title,
		FilePath:       res.FilePath,
		CommitHash:     res.CommitHash,
		PreviewContent: res.PreviewContent,
	}
	if withLength {
		n := res.TranscriptLength
		p.TranscriptLength = &n
	}
	if res.Image != nil {
		p.Image = &imagePayload{URL: res.Image.Path(), Alt: res.Image.Alt, Credit: res.Image.Credit}
	}
	return p
}

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func jsonErrorDetails(w http.ResponseWriter, message, details string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "details": details})
}
