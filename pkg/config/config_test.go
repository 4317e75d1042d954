package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
server:
  addr: ":9090"
  ingest_rate_limit: 2.5

database:
  url: "postgres://localhost:5432/test"
  table_name: "test_docs"
  vector_dim: 384
  index_lists: 50

embedder:
  base_url: "http://localhost:11434"
  model: "nomic-embed-text:latest"

processor:
  chunk_size: 500
  chunk_overlap: 100
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	// Test loading config
	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	// Verify loaded values
	assert.Equal(t, ":9090", config.Server.Addr)
	assert.Equal(t, 2.5, config.Server.IngestRateLimit)
	assert.Equal(t, "postgres://localhost:5432/test", config.Database.URL)
	assert.Equal(t, "test_docs", config.Database.TableName)
	assert.Equal(t, 384, config.Database.VectorDim)
	assert.Equal(t, 50, config.Database.IndexLists)
	assert.Equal(t, "http://localhost:11434", config.Embedder.BaseURL)
	assert.Equal(t, "nomic-embed-text:latest", config.Embedder.Model)
	assert.Equal(t, 500, config.Processor.ChunkSize)
	require.NotNil(t, config.Processor.ChunkOverlap)
	assert.Equal(t, 100, *config.Processor.ChunkOverlap)
}

func TestLoadConfig_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("server:\n  addr: \":7070\"\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":7070", config.Server.Addr)
	assert.Equal(t, "documents", config.Database.TableName)
	assert.Equal(t, 768, config.Database.VectorDim)
	assert.Equal(t, 100, config.Database.IndexLists)
	assert.Equal(t, "nomic-embed-text:latest", config.Embedder.Model)
	assert.Equal(t, 800, config.Processor.ChunkSize)
	require.NotNil(t, config.Processor.ChunkOverlap)
	assert.Equal(t, 150, *config.Processor.ChunkOverlap)
}

func TestLoadConfig_ExplicitZeroOverlap(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("processor:\n  chunk_size: 400\n  chunk_overlap: 0\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	// An explicit zero must not be replaced by the default.
	require.NotNil(t, config.Processor.ChunkOverlap)
	assert.Equal(t, 0, *config.Processor.ChunkOverlap)
	assert.Empty(t, config.Validate())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("database:\n  url: \"postgres://file:5432/db\"\n"), 0644)
	require.NoError(t, err)

	t.Setenv("DATABASE_URL", "postgres://env:5432/db")
	t.Setenv("OLLAMA_BASE_URL", "http://env-host:11434")

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env:5432/db", config.Database.URL)
	assert.Equal(t, "http://env-host:11434", config.Embedder.BaseURL)
}

func TestValidate(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Empty(t, config.Validate())
}

func TestValidate_OverlapNotBelowChunkSize(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	overlap := 100
	config.Processor.ChunkSize = 100
	config.Processor.ChunkOverlap = &overlap

	errs := config.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "processor.chunk_overlap", errs[0].Field)
}

func TestValidate_BadValues(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	config.Server.IngestRateLimit = -1
	config.Database.VectorDim = 0
	config.Processor.ChunkSize = 0

	errs := config.Validate()
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}

	assert.Contains(t, fields, "server.ingest_rate_limit")
	assert.Contains(t, fields, "database.vector_dim")
	assert.Contains(t, fields, "processor.chunk_size")
}
