package llm

import (
	"context"
	"fmt"
	"math"

	"github.com/tmc/langchaingo/llms/ollama"
)

type EmbedderConfig struct {
	BaseURL   string // Ollama server URL
	Model     string
	VectorDim int
}

// OllamaEmbedder is the model-backed embedder. Vectors come back from the
// model un-normalized and are scaled to unit L2 norm before returning.
type OllamaEmbedder struct {
	config EmbedderConfig
	llm    *ollama.LLM
}

func NewOllamaEmbedder(config EmbedderConfig) (*OllamaEmbedder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	emb, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding model: %v", err)
	}

	return &OllamaEmbedder{
		config: config,
		llm:    emb,
	}, nil
}

func (e *OllamaEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %v", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}

	for i, vec := range vectors {
		if len(vec) != e.config.VectorDim {
			return nil, fmt.Errorf("model %q returned dimension %d, configured dimension is %d",
				e.config.Model, len(vec), e.config.VectorDim)
		}
		normalize(vectors[i])
	}

	return vectors, nil
}

func (e *OllamaEmbedder) Dimension() int {
	return e.config.VectorDim
}

// normalize scales vec to unit L2 norm in place. Zero vectors are left
// untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
