package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/factory"
	"github.com/mailsift/mailsift/internal/logging"
	"github.com/mailsift/mailsift/internal/metrics"
	"github.com/mailsift/mailsift/internal/ports"
	"github.com/mailsift/mailsift/internal/vip"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewAIFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}

	// Register AI client. A disabled engine yields nil; so does a client
	// that cannot be built (missing credentials, unreachable provider).
	// The triage service treats a nil client as "rules only", keeping the
	// daemon up when the AI backend is misconfigured.
	if err := container.Provide(func(f *factory.AIFactory, logger *zap.Logger) core.AIClient {
		client, err := f.CreateAIClient()
		if err != nil {
			logger.Warn("AI client unavailable, continuing with rules only", zap.Error(err))
			return nil
		}
		return client
	}); err != nil {
		return nil, err
	}

	// Register result store (nil when persistence is disabled)
	if err := container.Provide(func(f *factory.StoreFactory) (core.ResultStore, error) {
		return f.CreateResultStore()
	}); err != nil {
		return nil, err
	}

	// Register metrics recorder
	if err := container.Provide(metrics.NewRecorder); err != nil {
		return nil, err
	}
	if err := container.Provide(func(r *metrics.Recorder) core.MetricsSink {
		return r
	}); err != nil {
		return nil, err
	}

	// Register VIP checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.VIPChecker {
		return vip.NewChecker(cfg.GetTriage().VIPDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register classification engines
	if err := container.Provide(func(cfg *config.Config) *core.FeatureExtractor {
		return core.NewFeatureExtractor(cfg.GetTaxonomy())
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) (*core.RuleEngine, error) {
		return core.NewRuleEngine(cfg.GetTaxonomy(), cfg.GetTemplates())
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) *core.ResponseComposer {
		return core.NewResponseComposer(cfg.GetTriage().Signature)
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(func(
		cfg *config.Config,
		extractor *core.FeatureExtractor,
		rules *core.RuleEngine,
		composer *core.ResponseComposer,
		ai core.AIClient,
		store core.ResultStore,
		sink core.MetricsSink,
		vipChecker core.VIPChecker,
		logger *zap.Logger,
	) (*core.TriageService, error) {
		aiCfg, err := cfg.GetAI()
		if err != nil {
			return nil, err
		}
		return core.NewTriageService(
			extractor,
			rules,
			composer,
			ai,
			store,
			sink,
			vipChecker,
			logger,
			aiCfg.Enabled,
			aiCfg.Timeout,
			aiCfg.AcceptThreshold,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register email ingest front-end
	if err := container.Provide(func(f *factory.IngestFactory) (ports.EmailIngest, error) {
		return f.CreateEmailIngest()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
