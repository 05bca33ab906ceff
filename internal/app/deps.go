package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"sovereign-embed/internal/config"
	"sovereign-embed/internal/embeddings"
	"sovereign-embed/internal/logger"
)

// Deps bundles the runtime dependencies built once per process.
// Embedder is read-only after Build returns.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Embedder embeddings.Embedder
}

// Close releases the embedder.
func (d Deps) Close() error {
	if d.Embedder == nil {
		return nil
	}
	return d.Embedder.Close()
}

// Build loads env, config, and the embedding model. It blocks until the
// model is ready to serve.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return Deps{}, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.LogLevel).With("instance_id", uuid.NewString())

	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return Deps{
		Config:   cfg,
		Log:      log,
		Embedder: embedder,
	}, nil
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	start := time.Now()
	switch cfg.EmbedProvider {
	case "hugot":
		log.Info("initializing embedding model", "provider", cfg.EmbedProvider, "repo", cfg.HFModelRepo)
		embedder, err := embeddings.NewHugotEmbedder(embeddings.HugotConfig{
			Repo:      cfg.HFModelRepo,
			AuthToken: cfg.HFToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", cfg.HFModelRepo, err)
		}
		log.Info("model ready", "model", embeddings.ModelID, "duration_ms", time.Since(start).Milliseconds())
		return embedder, nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when EMBED_PROVIDER=openai")
		}
		embedder, err := embeddings.NewOpenAIEmbedder(embeddings.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.EmbeddingModel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI-compatible embedder", "model", cfg.EmbeddingModel, "base_url", cfg.OpenAIBaseURL)
		return embedder, nil
	default:
		return nil, fmt.Errorf("invalid EMBED_PROVIDER: %s (valid options: hugot, openai)", cfg.EmbedProvider)
	}
}
