package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Server config
	if c.Server.IngestRateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.ingest_rate_limit",
			Message: "ingest_rate_limit must not be negative",
		})
	}

	// Validate Database config
	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Database.IndexLists < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.index_lists",
			Message: "index_lists must be positive",
		})
	}

	// Validate Embedder config
	if c.Embedder.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "embedder.base_url",
			Message: "Ollama base URL is required",
		})
	}

	if _, err := url.Parse(c.Embedder.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "embedder.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	// Validate Processor config
	if c.Processor.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Processor.ChunkOverlap == nil ||
		*c.Processor.ChunkOverlap < 0 || *c.Processor.ChunkOverlap >= c.Processor.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	return errors
}
