package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ne3naika-ctrl/codex/internal/models"
)

// MemoryStore is a brute-force cosine-similarity store. It backs tests
// and offline runs where no Postgres is available, and honors the same
// contract as VectorStore: append-only inserts, descending-score search.
type MemoryStore struct {
	mu     sync.RWMutex
	dim    int
	nextID int64
	docs   []models.Document
}

func NewMemoryStore(dim int) *MemoryStore {
	return &MemoryStore{dim: dim, nextID: 1}
}

func (s *MemoryStore) Insert(ctx context.Context, doc models.Document) error {
	if len(doc.Embedding) != s.dim {
		return fmt.Errorf("embedding dimension %d does not match store dimension %d",
			len(doc.Embedding), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc.ID = s.nextID
	doc.CreatedAt = time.Now()
	s.nextID++
	s.docs = append(s.docs, doc)
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.SearchResult, 0, len(s.docs))
	for _, doc := range s.docs {
		results = append(results, models.SearchResult{
			SourceName: doc.SourceName,
			SourceType: doc.SourceType,
			Content:    doc.Content,
			Score:      cosineSimilarity(embedding, doc.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *MemoryStore) Close() {}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
