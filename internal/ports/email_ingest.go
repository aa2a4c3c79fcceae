package ports

import (
	"context"

	"github.com/mailsift/mailsift/internal/core"
)

// EmailIngest defines the interface for an email ingestion front-end
type EmailIngest interface {
	// Process classifies a single email and returns the result
	Process(ctx context.Context, email *core.Email) (*core.ClassificationResult, error)

	// Start starts the ingestion service
	Start() error

	// Stop stops the ingestion service
	Stop() error
}
