// Package rules implements the deterministic override layer that sits
// between classification and final routing.
package rules

import (
	"strings"

	"github.com/opsdesk/triage/pkg/models"
)

// Rule is one ordered override: a named predicate over the raw issue and
// its classification, and the team it routes to on a match.
type Rule struct {
	Name    string
	Team    string
	Matches func(issue *models.Issue, analysis *models.AnalysisResult) bool
}

// Engine evaluates rules in order; the first match wins and evaluation
// stops. Side-effect-free and safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over an ordered rule list
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Route finds the first matching rule for an issue.
// Returns the matched rule, or nil if no rule overrides the routing;
// the caller then falls back to the classifier's suggested team.
func (e *Engine) Route(issue *models.Issue, analysis *models.AnalysisResult) *Rule {
	for i := range e.rules {
		if e.rules[i].Matches(issue, analysis) {
			return &e.rules[i]
		}
	}
	return nil
}

// DefaultRules returns the canonical override rules in priority order.
// New rules append without reordering existing ones.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "eu-gdpr",
			Team: "Legal-EU-Team",
			Matches: func(issue *models.Issue, _ *models.AnalysisResult) bool {
				region, ok := issue.CustomField("Region")
				if !ok || region != "EU" {
					return false
				}
				return strings.Contains(strings.ToLower(issue.Summary), "gdpr")
			},
		},
		{
			Name: "critical-priority",
			Team: "On-Call-Manager",
			// Substring check is case-sensitive on purpose: the rule set was
			// authored against the literal "Critical" priority values and a
			// lowercase variant is not a known priority.
			Matches: func(issue *models.Issue, _ *models.AnalysisResult) bool {
				return strings.Contains(issue.Priority, "Critical")
			},
		},
		{
			Name: "tagging-request",
			Team: "Global Tagging Team",
			Matches: func(_ *models.Issue, analysis *models.AnalysisResult) bool {
				return analysis != nil && analysis.Category == "Tagging Request"
			},
		},
	}
}
