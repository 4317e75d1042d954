package llm_test

import (
	"context"
	"math"
	"testing"

	"github.com/ne3naika-ctrl/codex/pkg/llm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestFallbackEmbedder_UnitNorm(t *testing.T) {
	emb := llm.NewFallbackEmbedder(384)

	vectors, err := emb.Encode(context.Background(), []string{"hello", "world", ""})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for _, vec := range vectors {
		assert.Len(t, vec, 384)
		assert.InDelta(t, 1.0, vectorNorm(vec), 1e-3)
	}
}

func TestFallbackEmbedder_Deterministic(t *testing.T) {
	emb := llm.NewFallbackEmbedder(128)

	first, err := emb.Encode(context.Background(), []string{"same text"})
	require.NoError(t, err)
	second, err := emb.Encode(context.Background(), []string{"same text"})
	require.NoError(t, err)

	assert.Equal(t, first[0], second[0])
}

func TestFallbackEmbedder_DistinctTexts(t *testing.T) {
	emb := llm.NewFallbackEmbedder(128)

	vectors, err := emb.Encode(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)

	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestFallbackEmbedder_OrderPreserving(t *testing.T) {
	emb := llm.NewFallbackEmbedder(64)
	ctx := context.Background()

	batch, err := emb.Encode(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)

	for i, text := range []string{"a", "b", "c"} {
		single, err := emb.Encode(ctx, []string{text})
		require.NoError(t, err)
		assert.Equal(t, single[0], batch[i])
	}
}

func TestProvider_DegradesToFallback(t *testing.T) {
	// Port 1 is never an Ollama server, so the probe fails and the
	// provider must settle on the fallback embedder.
	provider := llm.NewProvider(llm.EmbedderConfig{
		BaseURL:   "http://127.0.0.1:1",
		Model:     "nomic-embed-text:latest",
		VectorDim: 96,
	}, zerolog.Nop())

	vectors, err := provider.Encode(context.Background(), []string{"degraded"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)

	assert.True(t, provider.Fallback())
	assert.Len(t, vectors[0], 96)
	assert.InDelta(t, 1.0, vectorNorm(vectors[0]), 1e-3)
}

func TestProvider_ResolvesOnce(t *testing.T) {
	provider := llm.NewProvider(llm.EmbedderConfig{
		BaseURL:   "http://127.0.0.1:1",
		VectorDim: 32,
	}, zerolog.Nop())

	ctx := context.Background()
	first, err := provider.Encode(ctx, []string{"stable"})
	require.NoError(t, err)
	second, err := provider.Encode(ctx, []string{"stable"})
	require.NoError(t, err)

	// Same resolved embedder on both calls, so same vector.
	assert.Equal(t, first[0], second[0])
	assert.Equal(t, 32, provider.Dimension())
}
