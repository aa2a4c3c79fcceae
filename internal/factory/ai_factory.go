package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/adapters/bedrock"
	"github.com/mailsift/mailsift/internal/adapters/gemini"
	"github.com/mailsift/mailsift/internal/adapters/openai"
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
)

// AIFactory creates AI clients
type AIFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAIFactory creates a new AI client factory
func NewAIFactory(cfg *config.Config, logger *zap.Logger) *AIFactory {
	return &AIFactory{cfg: cfg, logger: logger}
}

// CreateAIClient creates an AI client based on the configured provider.
// When the AI engine is disabled it returns nil; the triage service treats
// a nil client the same as a disabled one.
func (f *AIFactory) CreateAIClient() (core.AIClient, error) {
	aiCfg, err := f.cfg.GetAI()
	if err != nil {
		return nil, err
	}
	if !aiCfg.Enabled {
		f.logger.Info("AI engine disabled, rule engine only")
		return nil, nil
	}

	switch aiCfg.Provider {
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateClient()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateClient()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateClient()
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", aiCfg.Provider)
	}
}
