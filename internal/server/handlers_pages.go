package server

import (
	"log/slog"
	"net/http"

	minutes "github.com/thinkscotty/minutes"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, "login.html")
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, "upload.html")
}

func (s *Server) servePage(w http.ResponseWriter, name string) {
	page, err := minutes.PagesFS.ReadFile("web/pages/" + name)
	if err != nil {
		slog.Error("Page not found", "page", name, "error", err)
		http.Error(w, "Page not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
