// Package config loads the API configuration from environment variables,
// with .env support at the entrypoints via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider selects the completion service backing the classifiers.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
)

// Config holds everything the API server needs.
type Config struct {
	ListenAddr  string
	CORSOrigins []string

	Provider        Provider
	OllamaURL       string
	OllamaModel     string
	OllamaTimeout   time.Duration
	AnthropicAPIKey string
	AnthropicModel  string

	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	QueryTimeout time.Duration
}

// Load reads configuration from the environment. An ANTHROPIC_API_KEY
// selects the Anthropic provider unless LLM_PROVIDER says otherwise.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  envOr("WATCHTOWER_LISTEN_ADDR", ":8000"),
		CORSOrigins: []string{envOr("WATCHTOWER_CORS_ORIGIN", "*")},

		OllamaURL:       envOr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:     envOr("OLLAMA_MODEL", "llama3.2"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),

		PostgresHost:     envOr("POSTGRES_HOST", "localhost"),
		PostgresPort:     envOr("POSTGRES_PORT", "5432"),
		PostgresDB:       envOr("POSTGRES_DB", "watchtower"),
		PostgresUser:     envOr("POSTGRES_USER", "watchtower"),
		PostgresPassword: envOr("POSTGRES_PASSWORD", "watchtower"),
	}

	ollamaTimeout, err := envSeconds("OLLAMA_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.OllamaTimeout = ollamaTimeout

	queryTimeout, err := envSeconds("QUERY_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.QueryTimeout = queryTimeout

	provider := Provider(os.Getenv("LLM_PROVIDER"))
	switch provider {
	case ProviderOllama, ProviderAnthropic:
		cfg.Provider = provider
	case "":
		cfg.Provider = ProviderOllama
		if cfg.AnthropicAPIKey != "" {
			cfg.Provider = ProviderAnthropic
		}
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", provider)
	}
	if cfg.Provider == ProviderAnthropic && cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("LLM_PROVIDER=anthropic requires ANTHROPIC_API_KEY")
	}

	return cfg, nil
}

// PostgresDSN builds the connection string for the store.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB,
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envSeconds(key string, fallback int) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return time.Duration(n) * time.Second, nil
}
