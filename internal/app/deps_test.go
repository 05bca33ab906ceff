package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-embed/internal/config"
	"sovereign-embed/internal/embeddings"
)

func TestBuildEmbedder(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("openai", func(t *testing.T) {
		e, err := buildEmbedder(config.Config{
			EmbedProvider:  "openai",
			OpenAIKey:      "test",
			OpenAIBaseURL:  "http://localhost:1/v1/",
			EmbeddingModel: embeddings.DefaultOpenAIModel,
		}, log)
		require.NoError(t, err)
		assert.IsType(t, &embeddings.OpenAIEmbedder{}, e)
	})

	t.Run("openai without key", func(t *testing.T) {
		_, err := buildEmbedder(config.Config{EmbedProvider: "openai"}, log)
		assert.ErrorContains(t, err, "OPENAI_API_KEY")
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := buildEmbedder(config.Config{EmbedProvider: "tfjs"}, log)
		assert.ErrorContains(t, err, "invalid EMBED_PROVIDER")
	})
}

func TestDepsClose(t *testing.T) {
	assert.NoError(t, Deps{}.Close())

	m := new(embeddings.MockEmbedder)
	m.On("Close").Return(nil).Once()
	assert.NoError(t, Deps{Embedder: m}.Close())
	m.AssertExpectations(t)
}

func TestBuildFailsOnBadConfig(t *testing.T) {
	t.Setenv("PORT", "abc")

	_, err := Build()
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to load config")
}
