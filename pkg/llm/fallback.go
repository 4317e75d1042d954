package llm

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// FallbackEmbedder is a development safety net used when the model-backed
// embedder cannot be reached. Each text is hashed to a seed and expanded
// into a unit vector of normally distributed components, so the same text
// always maps to the same vector. The vectors carry no semantic meaning;
// similarity rankings against model-produced vectors are meaningless.
type FallbackEmbedder struct {
	dim int
}

func NewFallbackEmbedder(dim int) *FallbackEmbedder {
	return &FallbackEmbedder{dim: dim}
}

func (e *FallbackEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.encodeOne(text)
	}
	return vectors, nil
}

func (e *FallbackEmbedder) encodeOne(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.dim)
	for i := range vec {
		vec[i] = float32(rng.NormFloat64())
	}
	normalize(vec)
	return vec
}

func (e *FallbackEmbedder) Dimension() int {
	return e.dim
}
