package core

import (
	"context"
	"time"
)

// AIClient defines the interface for an external AI classification backend.
// The backend is optional: any error it returns is treated as "unavailable"
// by the arbitration layer and never propagates further. Implementations
// must not retry on their own.
type AIClient interface {
	// ClassifyEmail classifies an email's intent and priority and drafts a
	// suggested response
	ClassifyEmail(ctx context.Context, email *Email) (*EngineVerdict, error)
}

// ResultStore defines the interface for persisting classification results
// for analytics
type ResultStore interface {
	// Save stores a classification result
	Save(ctx context.Context, rec *ResultRecord) error

	// Recent retrieves up to limit of the most recently processed results
	Recent(ctx context.Context, limit int) ([]*ResultRecord, error)

	// Purge removes results older than the retention window
	Purge(ctx context.Context) error
}

// ResultRecord is the persisted projection of a ClassificationResult
type ResultRecord struct {
	ProcessingID string
	Sender       string
	Intent       Intent
	Priority     Priority
	Source       VerdictSource
	Confidence   float64
	ProcessedAt  time.Time
}

// MetricsSink receives per-result observations for the metrics collaborator
type MetricsSink interface {
	// ObserveResult records counters and latency for one processed email
	ObserveResult(result *ClassificationResult)
}
