package llm

import (
	"context"
	"sync"
	"time"

	"github.com/ne3naika-ctrl/codex/internal/types"
	"github.com/rs/zerolog"
)

// Provider selects between the model-backed embedder and the deterministic
// fallback. The choice is made once, on first use: the Ollama embedder is
// constructed and asked for a single probe embedding, and any failure
// switches the process to the fallback permanently. Availability wins over
// embedding quality here; mixing records produced under different active
// embedders makes cross-boundary rankings meaningless, which is accepted.
type Provider struct {
	config EmbedderConfig
	log    zerolog.Logger

	once     sync.Once
	active   types.Embedder
	fallback bool
}

const probeTimeout = 30 * time.Second

func NewProvider(config EmbedderConfig, log zerolog.Logger) *Provider {
	return &Provider{
		config: config,
		log:    log,
	}
}

func (p *Provider) resolve() types.Embedder {
	p.once.Do(func() {
		emb, err := NewOllamaEmbedder(p.config)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
			defer cancel()
			_, err = emb.Encode(ctx, []string{"probe"})
		}
		if err != nil {
			p.log.Warn().Err(err).
				Str("model", p.config.Model).
				Msg("embedding model unavailable, using deterministic fallback")
			p.active = NewFallbackEmbedder(p.config.VectorDim)
			p.fallback = true
			return
		}
		p.active = emb
	})
	return p.active
}

func (p *Provider) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	return p.resolve().Encode(ctx, texts)
}

func (p *Provider) Dimension() int {
	return p.config.VectorDim
}

// Fallback reports whether the provider has degraded to the deterministic
// embedder. It forces resolution if it has not happened yet.
func (p *Provider) Fallback() bool {
	p.resolve()
	return p.fallback
}
