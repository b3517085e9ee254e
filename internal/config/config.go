// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (credentials and endpoints)
//  2. Config file (~/.firescout/config.yaml or ./config.yaml)
//  3. Default values
//
// Credentials are resolved from the environment only, with legacy
// Mixed_Case aliases accepted next to the canonical SNAKE_CASE names
// (see env.go). Tunables (turn limits, crawler behavior, rate limits)
// come from the config file via viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidMaxTurns indicates max_turns is out of range.
	ErrInvalidMaxTurns = errors.New("max_turns must be between 1 and 64")

	// ErrInvalidMessageCap indicates max_message_chars is out of range.
	ErrInvalidMessageCap = errors.New("max_message_chars must be positive")

	// ErrInvalidToolSource indicates an unknown tool source name.
	ErrInvalidToolSource = errors.New("tool_source must be \"firecrawl\" or \"builtin\"")
)

// DefaultKimiModel is used when no model identifier is configured.
const DefaultKimiModel = "moonshotai/Kimi-K2-Instruct:fireworks-ai"

// DefaultMaxMessageChars caps stored user messages to keep request
// payloads bounded. Matches the cap the hosted endpoint tolerates.
const DefaultMaxMessageChars = 175000

// Tool source identifiers used in Config.ToolSource.
const (
	ToolSourceFirecrawl = "firecrawl"
	ToolSourceBuiltin   = "builtin"
)

// Environment variable candidates, canonical name first. The second
// entry is the legacy alias kept for existing setups.
var (
	EnvFirecrawlKey = []string{"FIRECRAWL_API_KEY", "FIRECRAWL_API_Key"}
	EnvKimiBase     = []string{"KIMI_K2_HF_BASE", "Kimi_K2_HF_Base"}
	EnvKimiToken    = []string{"KIMI_K2_HF_TOKEN", "Kimi_K2_HF_Token"}
	EnvKimiModel    = []string{"KIMI_K2_HF_MODEL", "Kimi_K2_HF_Model"}
)

// WebToolsConfig tunes the built-in scrape/crawl tools.
type WebToolsConfig struct {
	Parallelism int `mapstructure:"parallelism" json:"parallelism"`
	DelayMs     int `mapstructure:"delay_ms" json:"delay_ms"`
	TimeoutMs   int `mapstructure:"timeout_ms" json:"timeout_ms"`
	MaxPages    int `mapstructure:"max_pages" json:"max_pages"`
}

// Config stores application configuration.
// Credential fields are populated from the environment by Load and are
// never written back or logged.
type Config struct {
	// Credentials and endpoints (environment only)
	FirecrawlAPIKey string `mapstructure:"-" json:"-"`
	KimiBase        string `mapstructure:"-" json:"-"`
	KimiToken       string `mapstructure:"-" json:"-"`
	KimiModel       string `mapstructure:"-" json:"kimi_model"`

	// Agent configuration
	MaxTurns        int    `mapstructure:"max_turns" json:"max_turns"`
	MaxMessageChars int    `mapstructure:"max_message_chars" json:"max_message_chars"`
	ToolSource      string `mapstructure:"tool_source" json:"tool_source"`

	// Built-in web tool configuration
	WebTools WebToolsConfig `mapstructure:"web_tools" json:"web_tools"`

	// Gateway configuration (serve mode only)
	RateBurst int `mapstructure:"rate_burst" json:"rate_burst"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > defaults.
// Missing credentials are not an error here; each command validates
// the subset it needs so all problems surface in one message.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".firescout"))
	}
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Credentials come straight from the environment, aliases included.
	cfg.FirecrawlAPIKey = FirstEnv(EnvFirecrawlKey...)
	cfg.KimiBase = FirstEnv(EnvKimiBase...)
	cfg.KimiToken = FirstEnv(EnvKimiToken...)
	cfg.KimiModel = FirstEnv(EnvKimiModel...)
	if cfg.KimiModel == "" {
		cfg.KimiModel = DefaultKimiModel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("max_turns", 8)
	v.SetDefault("max_message_chars", DefaultMaxMessageChars)
	v.SetDefault("tool_source", ToolSourceFirecrawl)

	v.SetDefault("web_tools.parallelism", 2)
	v.SetDefault("web_tools.delay_ms", 500)
	v.SetDefault("web_tools.timeout_ms", 30000)
	v.SetDefault("web_tools.max_pages", 10)

	v.SetDefault("rate_burst", 60)
}

// Validate checks ranges for file-sourced tunables. Credential
// presence is checked per command (ValidateServe, toolserver preflight)
// so that one run reports every missing value at once.
func (c *Config) Validate() error {
	if c.MaxTurns < 1 || c.MaxTurns > 64 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxTurns, c.MaxTurns)
	}
	if c.MaxMessageChars < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMessageCap, c.MaxMessageChars)
	}
	if c.ToolSource != ToolSourceFirecrawl && c.ToolSource != ToolSourceBuiltin {
		return fmt.Errorf("%w: got %q", ErrInvalidToolSource, c.ToolSource)
	}
	return nil
}

// ValidateServe checks the credentials the chat gateway needs.
func (c *Config) ValidateServe() error {
	var errs []error
	if c.KimiBase == "" {
		_, err := RequireEnv(EnvKimiBase...)
		errs = append(errs, err)
	}
	if c.KimiToken == "" {
		_, err := RequireEnv(EnvKimiToken...)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
