package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/ne3naika-ctrl/codex/internal/models"
	"github.com/ne3naika-ctrl/codex/internal/types"
	"github.com/rs/zerolog"
)

// ErrEmptyContent is returned when chunking produces nothing to store,
// detected before any embedding or database work starts.
var ErrEmptyContent = errors.New("no extractable content")

// Pipeline wires the chunker, the embedder and the vector store into the
// two operations the service exposes: ingest and retrieve.
type Pipeline struct {
	chunker  types.Chunker
	embedder types.Embedder
	store    types.VectorStore
	log      zerolog.Logger
}

func New(chunker types.Chunker, embedder types.Embedder, store types.VectorStore, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		log:      log,
	}
}

// Ingest chunks the text, embeds all chunks in one batch and stores one
// record per chunk, in chunk order. Inserts are independent: a failure
// partway through leaves the earlier records in place, and the returned
// error says how many made it.
func (p *Pipeline) Ingest(ctx context.Context, sourceName string, sourceType models.SourceType, text string) (int, error) {
	chunks := p.chunker.Chunk(text)
	if len(chunks) == 0 {
		return 0, ErrEmptyContent
	}

	vectors, err := p.embedder.Encode(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i, chunk := range chunks {
		doc := models.Document{
			SourceName: sourceName,
			SourceType: sourceType,
			Content:    chunk,
			Embedding:  vectors[i],
		}
		if err := p.store.Insert(ctx, doc); err != nil {
			return i, fmt.Errorf("stored %d of %d chunks: %w", i, len(chunks), err)
		}
	}

	p.log.Debug().
		Str("source_name", sourceName).
		Str("source_type", string(sourceType)).
		Int("chunks", len(chunks)).
		Msg("ingested document")

	return len(chunks), nil
}

// Retrieve embeds the query and returns the store's ranked results as-is:
// no thresholding, no expansion.
func (p *Pipeline) Retrieve(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	vectors, err := p.embedder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := p.store.Search(ctx, vectors[0], limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	return results, nil
}
