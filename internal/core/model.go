package core

import (
	"errors"
	"time"
)

// ErrInvalidEmail is returned when an email fails input validation before
// classification. It is the only error Classify can return.
var ErrInvalidEmail = errors.New("invalid email message")

// Intent is the classified purpose category of an email
type Intent string

const (
	IntentComplaint        Intent = "complaint"
	IntentSalesOpportunity Intent = "sales_opportunity"
	IntentSupportRequest   Intent = "support_request"
	IntentPricingInquiry   Intent = "pricing_inquiry"
	IntentGeneralInquiry   Intent = "general_inquiry"
)

// Intents lists every valid intent category
var Intents = []Intent{
	IntentComplaint,
	IntentSalesOpportunity,
	IntentSupportRequest,
	IntentPricingInquiry,
	IntentGeneralInquiry,
}

// Valid reports whether the intent is one of the known categories
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// Priority is the urgency tier driving response ordering
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// Priorities lists every valid priority tier
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityNormal}

// Valid reports whether the priority is one of the known tiers
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// VerdictSource identifies which engine produced a verdict
type VerdictSource string

const (
	SourceRule VerdictSource = "rule"
	SourceAI   VerdictSource = "ai"
)

// Email represents an incoming email message. It is immutable once
// constructed and owned by the caller.
type Email struct {
	From       string
	To         []string
	Subject    string
	Body       string
	Headers    map[string][]string
	ReceivedAt time.Time
}

// Signal is the canonical feature set derived from an email. It is
// recomputed per request and never persisted.
type Signal struct {
	TokenCount     int
	Matches        map[string][]string // taxonomy category -> matched keywords
	HasLegalThreat bool
	HasPricingTerm bool
	MentionsBug    bool
	SalesDensity   float64
	SentimentScore float64 // bounded to [-1, 1]
}

// EngineVerdict is one engine's classification output before arbitration.
// It is never mutated after creation.
type EngineVerdict struct {
	Intent            Intent
	Priority          Priority
	Confidence        float64 // bounded to [0, 1]
	Source            VerdictSource
	SuggestedResponse string
	ModelUsed         string
	AnalyzedAt        time.Time
}

// AuditTrail records which engines ran, which failed, and why the winning
// verdict was chosen.
type AuditTrail struct {
	RuleRan         bool
	AIRequested     bool
	AIFailed        bool
	AIFailureReason string
	AIVerdict       *EngineVerdict // recorded even when not selected
	SelectionReason string
	UrgentOverride  bool
	VIPEscalated    bool
	Elapsed         time.Duration
}

// ClassificationResult is the arbitration layer's final output, the only
// object handed to external collaborators. It carries no back-reference to
// the originating email beyond ProcessingID and the sender address.
type ClassificationResult struct {
	ProcessingID string
	Sender       string
	Verdict      EngineVerdict
	Response     string // final composed reply text
	Audit        AuditTrail
	ProcessedAt  time.Time
}
