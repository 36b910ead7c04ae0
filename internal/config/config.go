// ABOUTME: Configuration loading and parsing for frontdesk-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete frontdesk-gateway configuration
type Config struct {
	Environment   string              `yaml:"environment"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Completion    CompletionConfig    `yaml:"completion"`
	Realtime      RealtimeConfig      `yaml:"realtime"`
	HelpRequests  HelpRequestsConfig  `yaml:"help_requests"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CompletionConfig holds the text-completion backend configuration.
// Provider selects the backend: "openai" (any OpenAI-compatible endpoint)
// or "anthropic".
type CompletionConfig struct {
	Provider string `yaml:"provider"`
	APIURL   string `yaml:"api_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// RealtimeConfig holds credentials for the external voice transport. The
// gateway only carries these through to deployment tooling; no engine
// reads them.
type RealtimeConfig struct {
	URL       string `yaml:"url"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// HelpRequestsConfig holds help request lifecycle timing configuration
type HelpRequestsConfig struct {
	Timeout       time.Duration `yaml:"-"`
	SweepInterval time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	TimeoutRaw       string `yaml:"timeout"`
	SweepIntervalRaw string `yaml:"sweep_interval"`
}

// NotificationsConfig holds notification delivery configuration
type NotificationsConfig struct {
	RetryCount uint64 `yaml:"retry_count"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// A .env file in the working directory is loaded first so ${VAR_NAME}
// references in the YAML can pull secrets from it. Environment variables in
// the format ${VAR_NAME} are expanded. Duration strings are parsed into
// time.Duration values.
func Load(path string) (*Config, error) {
	// Best effort - a missing .env is fine, the variables may come from
	// the real environment.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in values the file may omit.
func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Completion.Provider == "" {
		c.Completion.Provider = "openai"
	}
	if c.HelpRequests.TimeoutRaw == "" {
		c.HelpRequests.TimeoutRaw = "1h"
	}
	if c.HelpRequests.SweepIntervalRaw == "" {
		c.HelpRequests.SweepIntervalRaw = "5m"
	}
	if c.Notifications.RetryCount == 0 {
		c.Notifications.RetryCount = 3
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Completion.Provider {
	case "openai":
		if c.Completion.APIURL == "" {
			return fmt.Errorf("completion.api_url is required for the openai provider")
		}
	case "anthropic":
	default:
		return fmt.Errorf("completion.provider must be \"openai\" or \"anthropic\", got %q", c.Completion.Provider)
	}

	if c.Completion.Model == "" {
		return fmt.Errorf("completion.model is required")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.HelpRequests.TimeoutRaw != "" {
		cfg.HelpRequests.Timeout, err = time.ParseDuration(cfg.HelpRequests.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.HelpRequests.TimeoutRaw, err)
		}
	}

	if cfg.HelpRequests.SweepIntervalRaw != "" {
		cfg.HelpRequests.SweepInterval, err = time.ParseDuration(cfg.HelpRequests.SweepIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing sweep_interval %q: %w", cfg.HelpRequests.SweepIntervalRaw, err)
		}
	}

	return nil
}
