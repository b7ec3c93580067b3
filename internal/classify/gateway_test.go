package classify

import (
	"context"
	"fmt"
	"testing"

	"github.com/opsdesk/triage/pkg/models"
)

// stubProvider returns a canned response or error
type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Close() error { return nil }

func TestGateway_Classify(t *testing.T) {
	response := `{
		"summary": "Login page returns 500",
		"category": "Bug",
		"urgency": "High",
		"root_cause": "Session store outage",
		"required_action": "Restart session store",
		"suggested_team": "Platform-Team",
		"confidence": 0.92
	}`

	g := NewGateway(&stubProvider{response: response})
	result := g.Classify(context.Background(), "Login broken", "500 on submit")

	if result.Category != "Bug" {
		t.Errorf("Category = %q, want Bug", result.Category)
	}
	if result.Urgency != models.UrgencyHigh {
		t.Errorf("Urgency = %q, want High", result.Urgency)
	}
	if result.SuggestedTeam != "Platform-Team" {
		t.Errorf("SuggestedTeam = %q, want Platform-Team", result.SuggestedTeam)
	}
	if result.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", result.Confidence)
	}
	if result.Failed() {
		t.Errorf("Failed() = true for a successful classification")
	}
}

func TestGateway_Classify_MarkdownFences(t *testing.T) {
	response := "```json\n" + `{"summary":"s","category":"Bug","urgency":"Low","root_cause":"r","required_action":"a","suggested_team":"T","confidence":0.5}` + "\n```"

	g := NewGateway(&stubProvider{response: response})
	result := g.Classify(context.Background(), "s", "d")

	if result.Failed() {
		t.Fatalf("fenced JSON treated as failure: %+v", result)
	}
	if result.Category != "Bug" {
		t.Errorf("Category = %q, want Bug", result.Category)
	}
}

func TestGateway_Classify_TransportFailure(t *testing.T) {
	g := NewGateway(&stubProvider{err: fmt.Errorf("connection refused")})
	result := g.Classify(context.Background(), "s", "d")

	if !result.Failed() {
		t.Fatalf("transport failure did not produce fallback: %+v", result)
	}
	if result.RootCause != models.FailureRootCause {
		t.Errorf("RootCause = %q, want %q", result.RootCause, models.FailureRootCause)
	}
	if result.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0.0", result.Confidence)
	}
	if result.SuggestedTeam == "" || result.Category == "" {
		t.Errorf("fallback left required fields empty: %+v", result)
	}
}

func TestGateway_Classify_MalformedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I think this is a bug."},
		{"truncated", `{"summary": "x", "cat`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(&stubProvider{response: tt.response})
			result := g.Classify(context.Background(), "s", "d")
			if !result.Failed() {
				t.Errorf("malformed response did not produce fallback: %+v", result)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         models.AnalysisResult
		urgency    string
		confidence float64
	}{
		{
			name:       "lowercase urgency canonicalized",
			in:         models.AnalysisResult{Urgency: "high", Confidence: 0.5},
			urgency:    models.UrgencyHigh,
			confidence: 0.5,
		},
		{
			name:       "unknown urgency defaults to Medium",
			in:         models.AnalysisResult{Urgency: "urgent", Confidence: 0.5},
			urgency:    models.UrgencyMedium,
			confidence: 0.5,
		},
		{
			name:       "confidence clamped high",
			in:         models.AnalysisResult{Urgency: "Low", Confidence: 1.7},
			urgency:    models.UrgencyLow,
			confidence: 1.0,
		},
		{
			name:       "confidence clamped low",
			in:         models.AnalysisResult{Urgency: "Low", Confidence: -0.2},
			urgency:    models.UrgencyLow,
			confidence: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.in
			normalize(&r)
			if r.Urgency != tt.urgency {
				t.Errorf("Urgency = %q, want %q", r.Urgency, tt.urgency)
			}
			if r.Confidence != tt.confidence {
				t.Errorf("Confidence = %v, want %v", r.Confidence, tt.confidence)
			}
		})
	}
}
