// Package api exposes the triage core over HTTP JSON endpoints.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/opsdesk/triage/pkg/models"
)

// Triager runs the analyze-and-route pipeline
type Triager interface {
	AnalyzeAndRoute(ctx context.Context, issue *models.Issue) (*models.AnalysisResult, models.RoutingDecision)
}

// IssueSearcher ranks indexed issues against a query
type IssueSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// Server serves the triage API
type Server struct {
	triager      Triager
	searcher     IssueSearcher
	defaultLimit int
	mux          *http.ServeMux
}

// NewServer creates an API server over the triage core
func NewServer(triager Triager, searcher IssueSearcher, defaultLimit int) *Server {
	s := &Server{
		triager:      triager,
		searcher:     searcher,
		defaultLimit: defaultLimit,
		mux:          http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/api/v1/route", s.handleRoute)
	s.mux.HandleFunc("/api/v1/search", s.handleSearch)
	s.mux.HandleFunc("/healthz", s.handleHealth)

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs the server until the listener fails
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	log.Printf("triage API listening on %s", addr)
	return srv.ListenAndServe()
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
