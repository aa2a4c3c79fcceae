package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/adapters/ingest"
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/ports"
)

// IngestFactory creates email ingestion front-ends based on configuration
type IngestFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.TriageService
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(cfg *config.Config, logger *zap.Logger, service *core.TriageService) *IngestFactory {
	return &IngestFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateEmailIngest creates an email ingestion front-end based on the
// configuration
func (f *IngestFactory) CreateEmailIngest() (ports.EmailIngest, error) {
	ingestType := f.cfg.GetString("server.ingest_type")

	switch ingestType {
	case "smtp":
		return ingest.NewSMTPIngest(
			f.service,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetString("server.headers.intent"),
			f.cfg.GetString("server.headers.priority"),
			f.cfg.GetString("server.headers.source"),
			f.cfg.GetString("server.headers.confidence"),
			f.cfg.GetString("server.relay.address"),
			f.cfg.GetInt("server.relay.port"),
			f.cfg.GetBool("server.relay.enabled"),
			f.cfg.GetString("server.subject_prefix"),
			f.cfg.GetBool("server.modify_subject"),
		), nil
	case "cli":
		return ingest.NewCliIngest(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported ingest type: %s", ingestType)
	}
}
