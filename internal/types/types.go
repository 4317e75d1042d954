package types

import (
	"context"

	"github.com/ne3naika-ctrl/codex/internal/models"
)

// Core interfaces

// Embedder encodes a batch of texts into unit-length vectors of a fixed
// dimension, one vector per input, in input order.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// VectorStore persists document records and answers cosine
// nearest-neighbor queries. Records are append-only.
type VectorStore interface {
	Insert(ctx context.Context, doc models.Document) error
	Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error)
	Close()
}

// Chunker splits raw text into overlapping chunks ready for embedding.
type Chunker interface {
	Chunk(text string) []string
}
