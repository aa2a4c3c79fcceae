package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/adapters/ingest"
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/factory"
	"github.com/mailsift/mailsift/internal/logging"
	"github.com/mailsift/mailsift/internal/metrics"
	"github.com/mailsift/mailsift/internal/vip"
)

var (
	// AI engine flags
	aiEnabled       = flag.Bool("ai", true, "Enable the AI engine (rules always run)")
	provider        = flag.String("provider", "openai", "AI provider (openai, gemini, bedrock)")
	aiTimeout       = flag.Duration("ai-timeout", 5*time.Second, "Timeout budget for the AI call")
	acceptThreshold = flag.Float64("accept-threshold", 0.6, "Minimum AI confidence to accept its verdict")
	maxTokens       = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature     = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP            = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize     = flag.Int("max-body-size", 4096, "Maximum email body size to send to the LLM")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Triage flags
	vipDomains = flag.String("vip-domains", "", "Comma-separated list of VIP customer domains")
	signature  = flag.String("signature", "Customer Success Team", "Signature for composed replies")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.NewFromFile(*configFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Build the classification engines
	taxonomy := cfg.GetTaxonomy()
	extractor := core.NewFeatureExtractor(taxonomy)
	rules, err := core.NewRuleEngine(taxonomy, cfg.GetTemplates())
	if err != nil {
		logger.Fatal("Failed to build rule engine", zap.Error(err))
	}
	composer := core.NewResponseComposer(cfg.GetTriage().Signature)

	// Build the optional AI client
	aiClient, err := factory.NewAIFactory(cfg, logger).CreateAIClient()
	if err != nil {
		logger.Warn("AI client unavailable, continuing with rules only", zap.Error(err))
		aiClient = nil
	}

	aiCfg, err := cfg.GetAI()
	if err != nil {
		logger.Fatal("Invalid AI configuration", zap.Error(err))
	}

	recorder := metrics.NewRecorder(logger)
	vipChecker := vip.NewChecker(cfg.GetTriage().VIPDomains, logger)

	service := core.NewTriageService(
		extractor,
		rules,
		composer,
		aiClient,
		nil, // no persistence for one-shot runs
		recorder,
		vipChecker,
		logger,
		aiCfg.Enabled,
		aiCfg.Timeout,
		aiCfg.AcceptThreshold,
	)

	email, err := readEmail(logger)
	if err != nil {
		logger.Fatal("Failed to read email", zap.Error(err))
	}

	front, err := ingest.NewCliIngest(service, logger, *verbose)
	if err != nil {
		logger.Fatal("Failed to create CLI front-end", zap.Error(err))
	}

	if _, err := front.Process(context.Background(), email); err != nil {
		os.Exit(1)
	}

	// Close any resources that need closing
	if closer, ok := aiClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close AI client", zap.Error(err))
		}
	}
}

// readEmail parses an RFC822 message from the input file or stdin
func readEmail(logger *zap.Logger) (*core.Email, error) {
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file %s: %w", *inputFile, err)
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read email body: %w", err)
	}

	email := &core.Email{
		From:       msg.Header.Get("From"),
		To:         strings.Split(msg.Header.Get("To"), ","),
		Subject:    msg.Header.Get("Subject"),
		Body:       string(bodyBytes),
		Headers:    make(map[string][]string),
		ReceivedAt: time.Now(),
	}
	for k, v := range msg.Header {
		email.Headers[k] = v
	}
	return email, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("ai.enabled", *aiEnabled)
	v.Set("ai.provider", *provider)
	v.Set("ai.timeout", aiTimeout.String())
	v.Set("ai.accept_threshold", *acceptThreshold)

	switch *provider {
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	}

	v.Set("triage.signature", *signature)
	if *vipDomains != "" {
		domains := strings.Split(*vipDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("triage.vip_domains", domains)
	} else {
		v.Set("triage.vip_domains", []string{})
	}

	return config.NewFromViper(v)
}
