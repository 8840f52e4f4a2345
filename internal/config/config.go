// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	// APIKey guards the honeypot endpoint; empty disables the check.
	APIKey string
	// CallbackURL is the reporting sink for final intelligence.
	CallbackURL   string
	ReportTimeout time.Duration
	// MinEngagementTurns is the turn threshold for escalation without
	// extracted indicators.
	MinEngagementTurns int
	Generator          GeneratorConfig
	ReportArchive      ReportArchiveConfig
	Telegram           TelegramConfig
}

// TelegramConfig controls the optional Telegram bot channel.
type TelegramConfig struct {
	// Token for the Bot API; empty disables the channel.
	Token string
}

// GeneratorConfig controls the upstream reply generator.
type GeneratorConfig struct {
	// BaseURL of an OpenAI-compatible chat-completions API. The default
	// points at Groq.
	BaseURL string
	// APIKey for the upstream; empty selects the rule-based responder.
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ReportArchiveConfig controls NDJSON archiving of delivered reports.
type ReportArchiveConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", ""),
		DBPath:             getEnv("DB_PATH", "./data/honeypot.db"),
		APIKey:             getEnv("SECRET_API_KEY", ""),
		CallbackURL:        getEnv("CALLBACK_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		ReportTimeout:      getEnvDuration("REPORT_TIMEOUT", 10*time.Second),
		MinEngagementTurns: getEnvInt("MIN_ENGAGEMENT_TURNS", 3),
		Generator: GeneratorConfig{
			BaseURL: getEnv("GENERATOR_BASE_URL", "https://api.groq.com/openai/v1"),
			APIKey:  getEnv("GROQ_API_KEY", ""),
			Model:   getEnv("MODEL_NAME", "llama-3.1-8b-instant"),
			Timeout: getEnvDuration("GENERATOR_TIMEOUT", 30*time.Second),
		},
		ReportArchive: ReportArchiveConfig{
			Enabled: getEnvBool("REPORT_ARCHIVE_ENABLED", true),
			Path:    getEnv("REPORT_ARCHIVE_PATH", "./data/scam_reports.ndjson"),
		},
		Telegram: TelegramConfig{
			Token: getEnv("TELEGRAM_BOT_TOKEN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.CallbackURL == "" {
		return fmt.Errorf("CALLBACK_URL cannot be empty")
	}
	if c.MinEngagementTurns <= 0 {
		return fmt.Errorf("MIN_ENGAGEMENT_TURNS must be > 0")
	}
	if c.ReportArchive.Enabled && c.ReportArchive.Path == "" {
		return fmt.Errorf("REPORT_ARCHIVE_PATH cannot be empty when archiving is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
