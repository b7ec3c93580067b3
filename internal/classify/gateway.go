// Package classify wraps the external text-understanding service behind the
// classifier gateway contract: callers always get a complete AnalysisResult,
// never an error. Upstream failure of any kind yields the fallback result.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/opsdesk/triage/internal/llm"
	"github.com/opsdesk/triage/pkg/models"
)

const systemPrompt = `You are a support issue analyst. Analyze the issue and respond with a single JSON object with these fields:
"summary" (one line), "category" (short free-form taxonomy label, e.g. "Bug", "Access Request", "Tagging Request"),
"urgency" (exactly one of "High", "Medium", "Low"), "root_cause" (hypothesis), "required_action",
"suggested_team", "confidence" (0.0-1.0), and optionally "country", "related_site",
"translated_description" (English translation if the issue is not in English).
Return JSON only, no other text.`

// Gateway calls the classification service and enforces the fallback contract
type Gateway struct {
	llm llm.Provider
}

// NewGateway creates a classifier gateway over a chat provider
func NewGateway(provider llm.Provider) *Gateway {
	return &Gateway{llm: provider}
}

// Classify analyzes redacted issue text. It never returns an error: any
// transport failure or malformed response is converted to the deterministic
// fallback result so downstream consumers need no null-handling. Callers are
// responsible for redacting the text first.
func (g *Gateway) Classify(ctx context.Context, summary, description string) *models.AnalysisResult {
	prompt := fmt.Sprintf("Issue Summary: %s\n\nIssue Description:\n%s", summary, description)

	response, err := g.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		log.Printf("classification failed, using fallback: %v", err)
		return models.FallbackAnalysis()
	}

	result, err := parseAnalysisResponse(response)
	if err != nil {
		log.Printf("malformed classification response, using fallback: %v", err)
		return models.FallbackAnalysis()
	}

	return result
}

// parseAnalysisResponse parses the service response into an AnalysisResult
func parseAnalysisResponse(response string) (*models.AnalysisResult, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}

	normalize(&result)
	return &result, nil
}

// normalize coerces a parsed result into the documented shape: canonical
// urgency strings, confidence clamped to [0, 1], required fields non-empty.
func normalize(r *models.AnalysisResult) {
	switch {
	case strings.EqualFold(r.Urgency, models.UrgencyHigh):
		r.Urgency = models.UrgencyHigh
	case strings.EqualFold(r.Urgency, models.UrgencyLow):
		r.Urgency = models.UrgencyLow
	default:
		r.Urgency = models.UrgencyMedium
	}

	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}

	if r.Summary == "" {
		r.Summary = "Unknown"
	}
	if r.Category == "" {
		r.Category = "Uncategorized"
	}
	if r.RootCause == "" {
		r.RootCause = "Unknown"
	}
	if r.RequiredAction == "" {
		r.RequiredAction = "Unknown"
	}
	if r.SuggestedTeam == "" {
		r.SuggestedTeam = "Unknown"
	}
}
