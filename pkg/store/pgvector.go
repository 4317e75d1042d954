package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ne3naika-ctrl/codex/internal/models"
	"github.com/pgvector/pgvector-go"
)

type VectorStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
	IndexLists int
}

// VectorStore persists document records in Postgres with a pgvector
// column and answers cosine nearest-neighbor queries through an ivfflat
// index. Records are append-only; there is no update or delete path.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(ctx context.Context, config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}
	if config.IndexLists == 0 {
		config.IndexLists = 100
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	// Enable pgvector extension
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	// Create documents table if it doesn't exist. The embedding dimension
	// is fixed at creation time; changing it requires a full rebuild.
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			source_name TEXT NOT NULL,
			source_type TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	// Create cosine-distance index
	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = %d)`,
		vs.config.TableName, vs.config.TableName, vs.config.IndexLists)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

func (vs *VectorStore) Insert(ctx context.Context, doc models.Document) error {
	if len(doc.Embedding) != vs.config.VectorDim {
		return fmt.Errorf("embedding dimension %d does not match store dimension %d",
			len(doc.Embedding), vs.config.VectorDim)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (source_name, source_type, content, embedding)
		VALUES ($1, $2, $3, $4)`,
		vs.config.TableName)

	_, err := vs.pool.Exec(ctx, stmt,
		doc.SourceName,
		string(doc.SourceType),
		doc.Content,
		pgvector.NewVector(doc.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %v", err)
	}

	return nil
}

func (vs *VectorStore) Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error) {
	query := fmt.Sprintf(`
		SELECT source_name, source_type, content, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %v", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var res models.SearchResult
		var sourceType string
		if err := rows.Scan(&res.SourceName, &sourceType, &res.Content, &res.Score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		res.SourceType = models.SourceType(sourceType)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %v", err)
	}

	return results, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}
