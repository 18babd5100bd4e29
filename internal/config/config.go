// Package config loads prospect-cli settings from config.yaml and the
// environment, and initializes the global logger.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "PROSPECT"

// Reasoning providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Validation modes, one per command.
const (
	ModeGenerate = "generate"
	ModeProcess  = "process"
	ModeReply    = "reply"
	ModeServe    = "serve"
	ModeRuns     = "runs"
)

// Config holds the full application configuration.
type Config struct {
	SerpAPI    SerpAPIConfig    `yaml:"serpapi" mapstructure:"serpapi"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Email      EmailConfig      `yaml:"email" mapstructure:"email"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Archive    ArchiveConfig    `yaml:"archive" mapstructure:"archive"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Outreach   OutreachConfig   `yaml:"outreach" mapstructure:"outreach"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SerpAPIConfig holds search service settings.
type SerpAPIConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxResults int     `yaml:"max_results" mapstructure:"max_results"`
}

// LLMConfig selects and configures the reasoning provider.
type LLMConfig struct {
	Provider  string          `yaml:"provider" mapstructure:"provider"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// EmailConfig holds Azure Communication Services settings.
type EmailConfig struct {
	ConnectionString string `yaml:"connection_string" mapstructure:"connection_string"`
	Sender           string `yaml:"sender" mapstructure:"sender"`
}

// RetryConfig configures the retry policy for outbound calls.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	MaxConns      int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns      int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CacheTTL returns the research cache lifetime. Zero disables caching.
func (s StoreConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLHours) * time.Hour
}

// ArchiveConfig holds Azure Blob Storage settings for report archival.
type ArchiveConfig struct {
	ConnectionString string `yaml:"connection_string" mapstructure:"connection_string"`
	Container        string `yaml:"container" mapstructure:"container"`
	Prefix           string `yaml:"prefix" mapstructure:"prefix"`
}

// Enabled reports whether archival is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.ConnectionString != ""
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID   string  `yaml:"client_id" mapstructure:"client_id"`
	Username   string  `yaml:"username" mapstructure:"username"`
	KeyPath    string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL   string  `yaml:"login_url" mapstructure:"login_url"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	LeadSource string  `yaml:"lead_source" mapstructure:"lead_source"`
}

// Enabled reports whether CRM sync is configured.
func (s SalesforceConfig) Enabled() bool {
	return s.ClientID != ""
}

// OutreachConfig configures email generation and sending.
type OutreachConfig struct {
	ProfilePath string `yaml:"profile_path" mapstructure:"profile_path"`
	DryRun      bool   `yaml:"dry_run" mapstructure:"dry_run"`
}

// ServerConfig configures the HTTP trigger server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ConfigurationError reports a missing or invalid setting. It is fatal at
// startup.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s %s (env %s)", e.Key, e.Reason, EnvVar(e.Key))
}

// EnvVar returns the environment variable that sets key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a real default are registered empty so
	// environment-only values are still picked up by Unmarshal.
	v.SetDefault("serpapi.key", "")
	v.SetDefault("serpapi.base_url", "https://serpapi.com")
	v.SetDefault("serpapi.rate_limit", 0)
	v.SetDefault("serpapi.max_results", 10)
	v.SetDefault("llm.provider", ProviderAnthropic)
	v.SetDefault("llm.anthropic.key", "")
	v.SetDefault("llm.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.gemini.key", "")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("email.connection_string", "")
	v.SetDefault("email.sender", "")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 1000)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.0)
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.database_url", "prospect.db")
	v.SetDefault("store.cache_ttl_hours", 168)
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("archive.connection_string", "")
	v.SetDefault("archive.container", "prospect-reports")
	v.SetDefault("archive.prefix", "")
	v.SetDefault("salesforce.client_id", "")
	v.SetDefault("salesforce.username", "")
	v.SetDefault("salesforce.key_path", "")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.rate_limit", 5)
	v.SetDefault("salesforce.lead_source", "prospect-cli")
	v.SetDefault("outreach.profile_path", "")
	v.SetDefault("outreach.dry_run", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings the given command needs. Every problem is
// reported; each is a *ConfigurationError.
func (c *Config) Validate(mode string) error {
	var errs []error
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, &ConfigurationError{Key: key, Reason: "is required"})
		}
	}
	invalid := func(key, reason string) {
		errs = append(errs, &ConfigurationError{Key: key, Reason: reason})
	}

	needsReasoning, needsSearch, needsDelivery, needsStore := false, false, false, false
	switch mode {
	case ModeGenerate:
		needsReasoning, needsSearch, needsDelivery, needsStore = true, true, !c.Outreach.DryRun, true
	case ModeProcess:
		needsReasoning, needsDelivery, needsStore = true, !c.Outreach.DryRun, true
	case ModeServe:
		needsReasoning, needsSearch, needsDelivery, needsStore = true, true, !c.Outreach.DryRun, true
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			invalid("server.port", "must be between 1 and 65535")
		}
	case ModeReply:
		needsReasoning = true
	case ModeRuns:
		needsStore = true
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needsReasoning {
		switch c.LLM.Provider {
		case ProviderAnthropic:
			require("llm.anthropic.key", c.LLM.Anthropic.Key)
		case ProviderGemini:
			require("llm.gemini.key", c.LLM.Gemini.Key)
		default:
			invalid("llm.provider", fmt.Sprintf("must be %q or %q", ProviderAnthropic, ProviderGemini))
		}
	}
	if needsSearch {
		require("serpapi.key", c.SerpAPI.Key)
	}
	if needsDelivery {
		require("email.connection_string", c.Email.ConnectionString)
		require("email.sender", c.Email.Sender)
	}
	if needsStore {
		switch c.Store.Driver {
		case DriverSQLite, DriverPostgres:
			require("store.database_url", c.Store.DatabaseURL)
		default:
			invalid("store.driver", fmt.Sprintf("must be %q or %q", DriverSQLite, DriverPostgres))
		}
	}
	if c.Retry.MaxAttempts < 1 {
		invalid("retry.max_attempts", "must be >= 1")
	}
	if c.Retry.JitterFraction < 0 || c.Retry.JitterFraction > 1 {
		invalid("retry.jitter_fraction", "must be between 0 and 1")
	}
	if c.Salesforce.Enabled() {
		require("salesforce.username", c.Salesforce.Username)
		require("salesforce.key_path", c.Salesforce.KeyPath)
	}

	return errors.Join(errs...)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
