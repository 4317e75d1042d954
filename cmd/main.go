package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/ne3naika-ctrl/codex/internal/types"
	cfgPkg "github.com/ne3naika-ctrl/codex/pkg/config"
	"github.com/ne3naika-ctrl/codex/pkg/extractor"
	"github.com/ne3naika-ctrl/codex/pkg/llm"
	"github.com/ne3naika-ctrl/codex/pkg/processor"
	"github.com/ne3naika-ctrl/codex/pkg/rag"
	"github.com/ne3naika-ctrl/codex/pkg/store"
	"github.com/ne3naika-ctrl/codex/server"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

type flags struct {
	configPath   string
	addr         string
	dbURL        string
	ollamaURL    string
	model        string
	tableName    string
	vectorDim    int
	chunkSize    int
	chunkOverlap int
	rateLimit    float64
	useMemory    bool
	ingest       bool
	query        string
	limit        int
}

func main() {
	if err := run(); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() flags {
	var f flags

	flag.StringVar(&f.configPath, "config", "", "Path to config file")
	flag.StringVar(&f.addr, "addr", "", "HTTP listen address")
	flag.StringVar(&f.dbURL, "db-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.StringVar(&f.ollamaURL, "ollama-url", os.Getenv("OLLAMA_BASE_URL"), "Ollama server URL")
	flag.StringVar(&f.model, "model", "", "Embedding model to use")
	flag.StringVar(&f.tableName, "table", "", "PostgreSQL table name")
	flag.IntVar(&f.vectorDim, "vector-dim", 0, "Vector dimension")
	flag.IntVar(&f.chunkSize, "chunk-size", 0, "Size of text chunks")
	flag.IntVar(&f.chunkOverlap, "chunk-overlap", 0, "Overlap between consecutive chunks")
	flag.Float64Var(&f.rateLimit, "rate-limit", 0, "Ingestion requests per second (0 disables)")
	flag.BoolVar(&f.useMemory, "memory", false, "Use the in-memory store instead of Postgres")
	flag.BoolVar(&f.ingest, "ingest", false, "Ingest the files given as arguments and exit")
	flag.StringVar(&f.query, "query", "", "Run a single search query and exit")
	flag.IntVar(&f.limit, "limit", 5, "Number of search results")
	flag.Parse()

	return f
}

// setFlags reports which flags were given explicitly, so a zero value on
// the command line can still override the config file.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) {
		set[fl.Name] = true
	})
	return set
}

func mergeConfig(cfg *cfgPkg.Config, f flags, set map[string]bool) {
	if set["addr"] {
		cfg.Server.Addr = f.addr
	}
	if set["rate-limit"] {
		cfg.Server.IngestRateLimit = f.rateLimit
	}
	if f.dbURL != "" {
		cfg.Database.URL = f.dbURL
	}
	if set["table"] {
		cfg.Database.TableName = f.tableName
	}
	if set["vector-dim"] {
		cfg.Database.VectorDim = f.vectorDim
	}
	if f.ollamaURL != "" {
		cfg.Embedder.BaseURL = f.ollamaURL
	}
	if set["model"] {
		cfg.Embedder.Model = f.model
	}
	if set["chunk-size"] {
		cfg.Processor.ChunkSize = f.chunkSize
	}
	if set["chunk-overlap"] {
		cfg.Processor.ChunkOverlap = &f.chunkOverlap
	}
}

func run() error {
	f := parseFlags()

	cfg, err := cfgPkg.LoadConfig(f.configPath)
	if err != nil {
		return err
	}
	mergeConfig(cfg, f, setFlags())

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		return fmt.Errorf("invalid configuration")
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	provider := llm.NewProvider(llm.EmbedderConfig{
		BaseURL:   cfg.Embedder.BaseURL,
		Model:     cfg.Embedder.Model,
		VectorDim: cfg.Database.VectorDim,
	}, logger)

	var vectorStore types.VectorStore
	if f.useMemory {
		vectorStore = store.NewMemoryStore(cfg.Database.VectorDim)
	} else {
		vectorStore, err = store.NewWithConfig(context.Background(), store.VectorStoreConfig{
			ConnString: cfg.Database.URL,
			TableName:  cfg.Database.TableName,
			VectorDim:  cfg.Database.VectorDim,
			IndexLists: cfg.Database.IndexLists,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize vector store: %v", err)
		}
	}
	defer vectorStore.Close()

	chunker := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    cfg.Processor.ChunkSize,
		ChunkOverlap: *cfg.Processor.ChunkOverlap,
	})

	pipeline := rag.New(chunker, provider, vectorStore, logger)

	switch {
	case f.ingest:
		return runIngest(pipeline, provider, flag.Args())
	case f.query != "":
		return runQuery(pipeline, f.query, f.limit)
	default:
		srv := server.New(server.Config{
			Addr:            cfg.Server.Addr,
			IngestRateLimit: cfg.Server.IngestRateLimit,
		}, pipeline, logger)
		return srv.ListenAndServe()
	}
}

func runIngest(pipeline *rag.Pipeline, provider *llm.Provider, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files to ingest")
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription(color.BlueString("Ingesting documents...")),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	total := 0
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %v", path, err)
		}

		text, sourceType, err := extractor.FromFile(path, raw)
		if err != nil {
			return fmt.Errorf("failed to extract %s: %v", path, err)
		}

		count, err := pipeline.Ingest(context.Background(), path, sourceType, text)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %v", path, err)
		}
		total += count
		bar.Add(1)
	}
	bar.Finish()

	color.Green("\n✓ Stored %d chunks from %d files\n", total, len(paths))
	if provider.Fallback() {
		color.Yellow("Warning: embedding model unavailable, stored fallback vectors\n")
	}
	return nil
}

func runQuery(pipeline *rag.Pipeline, query string, limit int) error {
	results, err := pipeline.Retrieve(context.Background(), query, limit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		color.Yellow("No results\n")
		return nil
	}

	for i, res := range results {
		color.Cyan("%d. %s (%s, score %.4f)", i+1, res.SourceName, res.SourceType, res.Score)
		fmt.Println(res.Content)
		fmt.Println()
	}
	return nil
}
