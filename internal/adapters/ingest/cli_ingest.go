package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
)

// CliIngest implements a command-line front-end for one-shot classification
type CliIngest struct {
	service *core.TriageService
	logger  *zap.Logger
	verbose bool
}

// NewCliIngest creates a new CLI front-end
func NewCliIngest(service *core.TriageService, logger *zap.Logger, verbose bool) (*CliIngest, error) {
	return &CliIngest{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// Process classifies an email and displays the results
func (f *CliIngest) Process(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Classification ===\n")
	result, err := f.service.Classify(ctx, email)
	if err != nil {
		f.logger.Error("Failed to classify email", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Intent: %s\n", result.Verdict.Intent)
	fmt.Printf("Priority: %s\n", result.Verdict.Priority)
	fmt.Printf("Source: %s\n", result.Verdict.Source)
	fmt.Printf("Confidence: %.4f\n", result.Verdict.Confidence)
	fmt.Printf("Selection: %s\n", result.Audit.SelectionReason)
	if result.Audit.AIFailed {
		fmt.Printf("AI failure: %s\n", result.Audit.AIFailureReason)
	}
	if result.Audit.UrgentOverride {
		fmt.Printf("Urgent override: legal threat detected by rules\n")
	}
	fmt.Printf("Processing time: %v\n", result.Audit.Elapsed)
	fmt.Printf("\n=== Suggested Reply ===\n%s\n", result.Response)

	return result, nil
}

// Start is a no-op for the CLI front-end
func (f *CliIngest) Start() error {
	return nil
}

// Stop is a no-op for the CLI front-end
func (f *CliIngest) Stop() error {
	return nil
}
