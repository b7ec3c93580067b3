// Package triage composes redaction, classification, and the override rule
// engine into the analyze-and-route operation.
package triage

import (
	"context"
	"fmt"

	"github.com/opsdesk/triage/internal/classify"
	"github.com/opsdesk/triage/internal/redact"
	"github.com/opsdesk/triage/internal/rules"
	"github.com/opsdesk/triage/pkg/models"
)

// ReasonModelSuggestion is the routing reason when no override rule matched
// and the classifier's suggested team is used.
const ReasonModelSuggestion = "model suggestion"

// Orchestrator runs the triage pipeline for one issue at a time.
// It holds no mutable state; invocations are independent and safe to run
// concurrently.
type Orchestrator struct {
	gateway *classify.Gateway
	engine  *rules.Engine
}

// NewOrchestrator creates an orchestrator over a gateway and rule engine
func NewOrchestrator(gateway *classify.Gateway, engine *rules.Engine) *Orchestrator {
	return &Orchestrator{
		gateway: gateway,
		engine:  engine,
	}
}

// AnalyzeAndRoute redacts the issue text, classifies it, and derives the
// routing decision. Total: classification failure surfaces as the fallback
// AnalysisResult, never as an error, and a routing decision is always
// produced, either an override rule match or the classifier suggestion.
// The analysis is also attached to the issue for callers that hold onto
// the record.
func (o *Orchestrator) AnalyzeAndRoute(ctx context.Context, issue *models.Issue) (*models.AnalysisResult, models.RoutingDecision) {
	summary := redact.Redact(issue.Summary)
	description := redact.Redact(issue.Description)

	analysis := o.gateway.Classify(ctx, summary, description)
	issue.Analysis = analysis

	if rule := o.engine.Route(issue, analysis); rule != nil {
		return analysis, models.RoutingDecision{
			Team:   rule.Team,
			Reason: fmt.Sprintf("rule: %s", rule.Name),
		}
	}

	return analysis, models.RoutingDecision{
		Team:   analysis.SuggestedTeam,
		Reason: ReasonModelSuggestion,
	}
}
