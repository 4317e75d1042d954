package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr            string  `yaml:"addr"`
		IngestRateLimit float64 `yaml:"ingest_rate_limit"`
	} `yaml:"server"`

	Database struct {
		URL        string `yaml:"url"`
		TableName  string `yaml:"table_name"`
		VectorDim  int    `yaml:"vector_dim"`
		IndexLists int    `yaml:"index_lists"`
	} `yaml:"database"`

	Embedder struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"embedder"`

	Processor struct {
		ChunkSize int `yaml:"chunk_size"`
		// Pointer so an explicit 0 survives defaulting: zero overlap is
		// a valid configuration, distinct from unset.
		ChunkOverlap *int `yaml:"chunk_overlap"`
	} `yaml:"processor"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/codex/config.yaml"),
			"/etc/codex/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "documents"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}
	if config.Database.IndexLists == 0 {
		config.Database.IndexLists = 100
	}

	if config.Embedder.BaseURL == "" {
		config.Embedder.BaseURL = "http://localhost:11434"
	}
	if config.Embedder.Model == "" {
		config.Embedder.Model = "nomic-embed-text:latest"
	}

	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 800
	}
	if config.Processor.ChunkOverlap == nil {
		overlap := 150
		config.Processor.ChunkOverlap = &overlap
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Embedder.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Addr = ":" + port
	}
}
