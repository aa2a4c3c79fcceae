package core

import (
	"fmt"
	"time"
)

// Rule confidence levels. The legal-threat branch is certain by
// definition; the catch-all carries the lowest confidence.
const (
	confidenceLegal   = 1.0
	confidenceSales   = 0.9
	confidenceSupport = 0.85
	confidencePricing = 0.8
	confidenceDefault = 0.5
)

// RuleEngine is the deterministic classification engine. It is a total
// function over any signal: the default branch guarantees a verdict, which
// is the load-bearing guarantee behind the service's uptime contract.
type RuleEngine struct {
	taxonomy  *Taxonomy
	templates TemplateSet
}

// NewRuleEngine creates a rule engine, validating the taxonomy and the
// template table. An error here is fatal at startup.
func NewRuleEngine(taxonomy *Taxonomy, templates TemplateSet) (*RuleEngine, error) {
	if err := taxonomy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy: %w", err)
	}
	if err := templates.Validate(); err != nil {
		return nil, fmt.Errorf("invalid response templates: %w", err)
	}
	return &RuleEngine{taxonomy: taxonomy, templates: templates}, nil
}

// Classify evaluates the rule cascade with first-match-wins semantics,
// most urgent rule first. It never fails.
func (r *RuleEngine) Classify(sig Signal) *EngineVerdict {
	var (
		intent     Intent
		priority   Priority
		confidence float64
	)

	switch {
	case sig.HasLegalThreat:
		intent, priority, confidence = IntentComplaint, PriorityUrgent, confidenceLegal

	case sig.SalesDensity >= r.taxonomy.SalesDensity:
		intent, priority, confidence = IntentSalesOpportunity, PriorityHigh, confidenceSales

	case sig.MentionsBug:
		intent, confidence = IntentSupportRequest, confidenceSupport
		if sig.SentimentScore < -0.3 {
			priority = PriorityUrgent
		} else {
			priority = PriorityNormal
		}

	case sig.HasPricingTerm:
		intent, priority, confidence = IntentPricingInquiry, PriorityNormal, confidencePricing

	default:
		intent, priority, confidence = IntentGeneralInquiry, PriorityNormal, confidenceDefault
	}

	return &EngineVerdict{
		Intent:            intent,
		Priority:          priority,
		Confidence:        confidence,
		Source:            SourceRule,
		SuggestedResponse: r.templates.Lookup(intent, priority),
		ModelUsed:         "rules",
		AnalyzedAt:        time.Now(),
	}
}
