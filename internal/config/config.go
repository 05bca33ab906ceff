package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds process-wide settings read once at cold start.
type Config struct {
	// Server
	Port              int           `env:"PORT" envDefault:"8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Embeddings
	EmbedProvider string `env:"EMBED_PROVIDER" envDefault:"hugot"` // "hugot" (in-process) or "openai" (OpenAI-compatible server)

	// hugot downloads weights into a throwaway dir on every cold start; there is no cache dir setting.
	HFModelRepo string `env:"HF_MODEL_REPO" envDefault:"KnightsAnalytics/all-MiniLM-L6-v2"`
	HFToken     string `env:"HF_TOKEN"`

	OpenAIKey      string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"sentence-transformers/all-MiniLM-L6-v2"`
}

// Load reads configuration from environment variables with defaults.
// A value that does not parse is an error; there is no partial config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
