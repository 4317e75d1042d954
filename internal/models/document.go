package models

import "time"

// SourceType identifies what kind of input a stored chunk came from.
type SourceType string

const (
	SourceTypeText     SourceType = "text"
	SourceTypeMarkdown SourceType = "markdown"
	SourceTypePDF      SourceType = "pdf"
)

// Document is one stored chunk with its embedding and source metadata.
// ID and CreatedAt are assigned by the store on insert.
type Document struct {
	ID         int64
	SourceName string
	SourceType SourceType
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}

// SearchResult is one ranked hit from a similarity search. Score is
// cosine similarity: 1.0 for an identical vector, down to -1.0.
type SearchResult struct {
	SourceName string     `json:"source_name"`
	SourceType SourceType `json:"source_type"`
	Content    string     `json:"content"`
	Score      float64    `json:"score"`
}
