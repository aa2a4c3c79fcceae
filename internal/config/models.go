package config

import (
	"fmt"
	"time"

	"github.com/mailsift/mailsift/internal/core"
)

// AIConfig represents the arbitration-facing AI engine configuration
type AIConfig struct {
	Enabled         bool
	Provider        string
	Timeout         time.Duration
	AcceptThreshold float64
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// StoreConfig represents the result store configuration
type StoreConfig struct {
	Type             string
	Enabled          bool
	Retention        time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// TriageConfig represents service-level triage settings
type TriageConfig struct {
	VIPDomains []string
	Signature  string
}

// GetAI returns the AI engine configuration
func (c *Config) GetAI() (AIConfig, error) {
	timeout, err := c.GetDuration("ai.timeout")
	if err != nil {
		return AIConfig{}, fmt.Errorf("invalid ai.timeout: %w", err)
	}
	return AIConfig{
		Enabled:         c.GetBool("ai.enabled"),
		Provider:        c.GetString("ai.provider"),
		Timeout:         timeout,
		AcceptThreshold: c.GetFloat64("ai.accept_threshold"),
	}, nil
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetStore returns the result store configuration
func (c *Config) GetStore() (StoreConfig, error) {
	retention, err := c.GetDuration("store.retention")
	if err != nil {
		return StoreConfig{}, fmt.Errorf("invalid store.retention: %w", err)
	}
	cleanup, err := c.GetDuration("store.cleanup_frequency")
	if err != nil {
		return StoreConfig{}, fmt.Errorf("invalid store.cleanup_frequency: %w", err)
	}
	return StoreConfig{
		Type:             c.GetString("store.type"),
		Enabled:          c.GetBool("store.enabled"),
		Retention:        retention,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("store.sqlite_path"),
		MySQLDSN:         c.GetString("store.mysql_dsn"),
	}, nil
}

// GetTriage returns the triage settings
func (c *Config) GetTriage() TriageConfig {
	return TriageConfig{
		VIPDomains: c.GetStringSlice("triage.vip_domains"),
		Signature:  c.GetString("triage.signature"),
	}
}

// GetTaxonomy returns the keyword taxonomy loaded from configuration
func (c *Config) GetTaxonomy() *core.Taxonomy {
	return &core.Taxonomy{
		Legal:        c.GetStringSlice("taxonomy.legal"),
		Sales:        c.GetStringSlice("taxonomy.sales"),
		Support:      c.GetStringSlice("taxonomy.support"),
		Pricing:      c.GetStringSlice("taxonomy.pricing"),
		Positive:     c.GetStringSlice("taxonomy.sentiment_positive"),
		Negative:     c.GetStringSlice("taxonomy.sentiment_negative"),
		SalesDensity: c.GetFloat64("triage.sales_density_threshold"),
	}
}

// GetTemplates returns the response template table loaded from
// configuration, keyed by intent and priority
func (c *Config) GetTemplates() core.TemplateSet {
	templates := make(core.TemplateSet, len(core.Intents))
	for _, intent := range core.Intents {
		templates[intent] = make(map[core.Priority]string, len(core.Priorities))
		for _, priority := range core.Priorities {
			key := fmt.Sprintf("templates.%s.%s", intent, priority)
			templates[intent][priority] = c.GetString(key)
		}
	}
	return templates
}
