package models

// Canonical urgency values. Case-sensitive by contract.
const (
	UrgencyHigh   = "High"
	UrgencyMedium = "Medium"
	UrgencyLow    = "Low"
)

// FailureRootCause marks an AnalysisResult produced by the fallback path
// rather than by the classification service.
const FailureRootCause = "Analysis failed"

// AnalysisResult is the structured classification of a single issue.
// Immutable once returned and never partially filled: on classifier
// failure the whole value is replaced by FallbackAnalysis().
type AnalysisResult struct {
	Summary        string  `json:"summary"`
	Category       string  `json:"category"`
	Urgency        string  `json:"urgency"`
	RootCause      string  `json:"root_cause"`
	RequiredAction string  `json:"required_action"`
	SuggestedTeam  string  `json:"suggested_team"`
	Confidence     float64 `json:"confidence"`

	// Locale extraction, populated when the classifier can infer them.
	Country               string `json:"country,omitempty"`
	RelatedSite           string `json:"related_site,omitempty"`
	TranslatedDescription string `json:"translated_description,omitempty"`
}

// Failed reports whether this result came from the fallback path.
func (a *AnalysisResult) Failed() bool {
	return a.RootCause == FailureRootCause
}

// FallbackAnalysis returns the sentinel result substituted when the
// classification service is unavailable or returns garbage. Every required
// field is populated so downstream consumers never null-check.
func FallbackAnalysis() *AnalysisResult {
	return &AnalysisResult{
		Summary:        "Unknown",
		Category:       "Uncategorized",
		Urgency:        UrgencyLow,
		RootCause:      FailureRootCause,
		RequiredAction: "Unknown",
		SuggestedTeam:  "Unknown",
		Confidence:     0.0,
	}
}

// RoutingDecision is the final team recommendation for an issue.
// Always produced by exactly one of: a matching override rule, or the
// classifier's suggested team as fallback.
type RoutingDecision struct {
	Team   string `json:"recommended_team"`
	Reason string `json:"reason"`
}

// SearchResult is one ranked hit from a similarity query.
type SearchResult struct {
	IssueKey    string  `json:"issue_key"`
	Summary     string  `json:"summary"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Similarity  float64 `json:"similarity"` // cosine similarity, [-1, 1]
}

// IndexStats contains statistics from an indexing run
type IndexStats struct {
	Candidates int `json:"candidates"`
	Indexed    int `json:"indexed"`
	Skipped    int `json:"skipped"`
	DurationMs int `json:"duration_ms"`
}
