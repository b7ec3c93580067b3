package api

import (
	"encoding/json"
	"net/http"

	"github.com/opsdesk/triage/pkg/models"
)

// triageRequest is the body for POST /api/v1/analyze and /api/v1/route
type triageRequest struct {
	Summary      string            `json:"summary"`
	Description  string            `json:"description"`
	Priority     string            `json:"priority,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// searchRequest is the body for POST /api/v1/search
type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// searchResponse wraps the ranked results
type searchResponse struct {
	Results []models.SearchResult `json:"results"`
}

func (r *triageRequest) toIssue() *models.Issue {
	return &models.Issue{
		Summary:      r.Summary,
		Description:  r.Description,
		Priority:     r.Priority,
		CustomFields: r.CustomFields,
	}
}

// handleAnalyze classifies an issue and returns the AnalysisResult
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTriageRequest(w, r)
	if !ok {
		return
	}

	analysis, _ := s.triager.AnalyzeAndRoute(r.Context(), req.toIssue())
	writeJSON(w, http.StatusOK, analysis)
}

// handleRoute classifies an issue and returns only the routing decision
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTriageRequest(w, r)
	if !ok {
		return
	}

	_, decision := s.triager.AnalyzeAndRoute(r.Context(), req.toIssue())
	writeJSON(w, http.StatusOK, decision)
}

// handleSearch ranks indexed issues against a free-text query
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = s.defaultLimit
	}

	results, err := s.searcher.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeTriageRequest parses and validates an analyze/route body
func decodeTriageRequest(w http.ResponseWriter, r *http.Request) (*triageRequest, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil, false
	}

	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if req.Summary == "" && req.Description == "" {
		writeError(w, http.StatusBadRequest, "summary or description is required")
		return nil, false
	}

	return &req, true
}
