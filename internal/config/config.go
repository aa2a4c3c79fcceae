package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mailsift/mailsift/internal/core"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mailsift/")
	v.AddConfigPath("$HOME/.mailsift")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAILSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit file path,
// skipping the search paths. A missing or unreadable file is an error.
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("MAILSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI engine defaults
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.timeout", "5s")
	v.SetDefault("ai.accept_threshold", 0.6)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Triage defaults
	v.SetDefault("triage.vip_domains", []string{})
	v.SetDefault("triage.signature", "Customer Success Team")
	v.SetDefault("triage.sales_density_threshold", 0.05)

	// Keyword taxonomy defaults (externally editable data)
	tax := core.DefaultTaxonomy()
	v.SetDefault("taxonomy.legal", tax.Legal)
	v.SetDefault("taxonomy.sales", tax.Sales)
	v.SetDefault("taxonomy.support", tax.Support)
	v.SetDefault("taxonomy.pricing", tax.Pricing)
	v.SetDefault("taxonomy.sentiment_positive", tax.Positive)
	v.SetDefault("taxonomy.sentiment_negative", tax.Negative)

	// Response template defaults, one per intent/priority pair
	for intent, byPriority := range core.DefaultTemplates() {
		for priority, text := range byPriority {
			v.SetDefault(fmt.Sprintf("templates.%s.%s", intent, priority), text)
		}
	}

	// Result store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.retention", "720h")
	v.SetDefault("store.cleanup_frequency", "1h")
	v.SetDefault("store.sqlite_path", "/data/mailsift_results.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/mailsift")

	// Server defaults
	v.SetDefault("server.ingest_type", "smtp")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.headers.intent", "X-Mailsift-Intent")
	v.SetDefault("server.headers.priority", "X-Mailsift-Priority")
	v.SetDefault("server.headers.source", "X-Mailsift-Source")
	v.SetDefault("server.headers.confidence", "X-Mailsift-Confidence")
	v.SetDefault("server.subject_prefix", "[URGENT] ")
	v.SetDefault("server.modify_subject", true)
	v.SetDefault("server.relay.address", "127.0.0.1")
	v.SetDefault("server.relay.port", 10026)
	v.SetDefault("server.relay.enabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
