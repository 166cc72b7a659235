// Package config provides configuration management for devpulse.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the optional config file read from the working directory.
const FileName = "devpulse.yaml"

// Config holds the application configuration.
type Config struct {
	// GitHubToken is the default credential for GitHub API calls.
	GitHubToken string

	// LLMAPIKey authenticates with the chat completion endpoint.
	LLMAPIKey string
	// LLMBaseURL overrides the endpoint for OpenAI-compatible servers.
	LLMBaseURL string
	LLMModel   string

	// RedpandaBrokers enables agentic mode when non-empty.
	RedpandaBrokers []string
	PostgresDSN     string

	Days     int
	LogLevel string
	HTTPAddr string
}

// keys maps config file keys to their environment variables.
var keys = map[string]string{
	"github_token":     "GITHUB_TOKEN",
	"llm_api_key":      "LLM_API_KEY",
	"llm_base_url":     "LLM_BASE_URL",
	"llm_model":        "LLM_MODEL",
	"redpanda_brokers": "REDPANDA_BROKERS",
	"postgres_dsn":     "POSTGRES_DSN",
	"days":             "DEVPULSE_DAYS",
	"log_level":        "LOG_LEVEL",
	"http_addr":        "HTTP_ADDR",
}

// Load reads devpulse.yaml from the working directory, if present, and
// overlays environment variables.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with the config file looked up in dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("llm_model", "gpt-4o-mini")
	v.SetDefault("days", 7)
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")

	for key, env := range keys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
	}

	cfg := &Config{
		GitHubToken:     v.GetString("github_token"),
		LLMAPIKey:       v.GetString("llm_api_key"),
		LLMBaseURL:      v.GetString("llm_base_url"),
		LLMModel:        v.GetString("llm_model"),
		RedpandaBrokers: splitList(v.GetStringSlice("redpanda_brokers")),
		PostgresDSN:     v.GetString("postgres_dsn"),
		Days:            v.GetInt("days"),
		LogLevel:        v.GetString("log_level"),
		HTTPAddr:        v.GetString("http_addr"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY environment variable is required")
	}
	if c.Days <= 0 {
		return fmt.Errorf("DEVPULSE_DAYS must be positive, got %d", c.Days)
	}
	return nil
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
