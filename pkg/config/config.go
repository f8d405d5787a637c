package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultSearchURL = "https://query2.finance.yahoo.com/v1/finance/search"
	DefaultChartURL  = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultCountry   = "United States"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/42.0.2311.135 Safari/537.36 Edge/12.246"
)

// Config holds all runtime configuration for the chatbot.
type Config struct {
	MaxTurns    int           `mapstructure:"max_turns"`
	Verbose     bool          `mapstructure:"verbose"`
	LogLevel    string        `mapstructure:"log_level"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`

	Finance FinanceConfig `mapstructure:"finance"`
}

// FinanceConfig points the symbol and price lookups at their upstream endpoints.
type FinanceConfig struct {
	SearchURL string `mapstructure:"search_url"`
	ChartURL  string `mapstructure:"chart_url"`
	Country   string `mapstructure:"country"`
	UserAgent string `mapstructure:"user_agent"`
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		MaxTurns:    10,
		Verbose:     false,
		LogLevel:    "info",
		HTTPTimeout: 30 * time.Second,
		Model:       DefaultModel,
		Finance: FinanceConfig{
			SearchURL: DefaultSearchURL,
			ChartURL:  DefaultChartURL,
			Country:   DefaultCountry,
			UserAgent: DefaultUserAgent,
		},
	}
}

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string]string{
	"api_key":            "OPENAI_API_KEY",
	"base_url":           "OPENAI_BASE_URL",
	"model":              "OPENAI_MODEL",
	"max_turns":          "STOCKBOT_MAX_TURNS",
	"verbose":            "STOCKBOT_VERBOSE",
	"log_level":          "STOCKBOT_LOG_LEVEL",
	"http_timeout":       "STOCKBOT_HTTP_TIMEOUT",
	"finance.search_url": "STOCKBOT_FINANCE_SEARCH_URL",
	"finance.chart_url":  "STOCKBOT_FINANCE_CHART_URL",
	"finance.country":    "STOCKBOT_FINANCE_COUNTRY",
	"finance.user_agent": "STOCKBOT_FINANCE_USER_AGENT",
}

// Load reads defaults, an optional config file and the environment, in that
// order of precedence (environment wins). An empty path skips the file.
func Load(path string) (Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetDefault("max_turns", defaults.MaxTurns)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("http_timeout", defaults.HTTPTimeout)
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("model", defaults.Model)
	v.SetDefault("finance.search_url", defaults.Finance.SearchURL)
	v.SetDefault("finance.chart_url", defaults.Finance.ChartURL)
	v.SetDefault("finance.country", defaults.Finance.Country)
	v.SetDefault("finance.user_agent", defaults.Finance.UserAgent)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return Normalize(cfg), nil
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	defaults := DefaultConfig()

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Finance.SearchURL = strings.TrimSpace(cfg.Finance.SearchURL)
	cfg.Finance.ChartURL = strings.TrimRight(strings.TrimSpace(cfg.Finance.ChartURL), "/")
	cfg.Finance.Country = strings.TrimSpace(cfg.Finance.Country)
	cfg.Finance.UserAgent = strings.TrimSpace(cfg.Finance.UserAgent)

	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.Finance.SearchURL == "" {
		cfg.Finance.SearchURL = defaults.Finance.SearchURL
	}
	if cfg.Finance.ChartURL == "" {
		cfg.Finance.ChartURL = defaults.Finance.ChartURL
	}
	if cfg.Finance.UserAgent == "" {
		cfg.Finance.UserAgent = defaults.Finance.UserAgent
	}
	if cfg.HTTPTimeout < 0 {
		cfg.HTTPTimeout = 0
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 1
	}
	return cfg
}

// ErrMissingAPIKey reports that no provider credential was configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Validate reports configuration that will make the LM client fail on first use.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
