package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"ragqa/config"
	"ragqa/internal/adapter/cache"
	"ragqa/internal/adapter/chromemstore"
	"ragqa/internal/adapter/chunker"
	"ragqa/internal/adapter/embedding"
	"ragqa/internal/adapter/extract"
	"ragqa/internal/adapter/fs"
	"ragqa/internal/adapter/index"
	"ragqa/internal/adapter/llm"
	"ragqa/internal/adapter/memstore"
	"ragqa/internal/adapter/store"
	"ragqa/internal/port"
	"ragqa/internal/usecase"
)

// app holds the components shared by the commands.
type app struct {
	cfg       *config.Config
	index     *cache.CachedIndex
	collector *fs.Collector
	formats   []string
	llm       *llm.Client
	answer    *usecase.AnswerUseCase
	session   *usecase.Session
}

func (a *app) Close() error {
	if a.llm != nil {
		s := a.llm.Stats()
		slog.Debug("llm usage",
			"calls", s.TotalCalls,
			"failed", s.FailedCalls,
			"input_chars", s.TotalInputChars,
			"output_chars", s.TotalOutputChars,
		)
	}
	return a.index.Close()
}

// indexDir resolves the configured index directory against the root.
func indexDir(cfg *config.Config, root string) string {
	if filepath.IsAbs(cfg.Index.Dir) {
		return cfg.Index.Dir
	}
	return filepath.Join(root, cfg.Index.Dir)
}

// newApp wires the pipeline. The language model is only constructed when
// withLLM is set, so commands that never call it work without an API key.
func newApp(ctx context.Context, cfg *config.Config, root string, withLLM bool) (*app, error) {
	cached, err := OpenIndex(cfg, root)
	if err != nil {
		return nil, err
	}

	chk, err := chunker.NewRecursiveChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		cached.Close()
		return nil, err
	}

	var (
		model  port.LLM
		client *llm.Client
	)
	if withLLM {
		client, err = llm.New(ctx, llm.Options{
			Provider:    cfg.LLM.Provider,
			Model:       cfg.LLM.Model,
			APIKeyEnv:   cfg.LLM.APIKeyEnv,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		})
		if err != nil {
			cached.Close()
			return nil, fmt.Errorf("failed to create language model: %w", err)
		}
		model = client
	}

	registry := extract.NewRegistry()
	answer := usecase.NewAnswerUseCase(cached, usecase.NewSynthesizer(model), cfg.Retrieve.TopK)
	ingest := usecase.NewIngestUseCase(registry, chk, cached)

	return &app{
		cfg:       cfg,
		index:     cached,
		collector: fs.NewCollector(fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes), cfg.MaxFileBytes()).
			WithFormats(registry.Supports),
		formats:   registry.Extensions(),
		llm:       client,
		answer:    answer,
		session:   usecase.NewSession(ctx, cached, answer, ingest),
	}, nil
}

// OpenIndex opens the configured collection behind a query cache.
func OpenIndex(cfg *config.Config, root string) (*cache.CachedIndex, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	ix, err := openIndex(cfg, root, embedder)
	if err != nil {
		return nil, err
	}
	qc := cache.NewQueryCache(cfg.Retrieve.CacheSize, time.Duration(cfg.Retrieve.CacheTTLSecs)*time.Second)
	return cache.NewCachedIndex(ix, qc), nil
}

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	// Remote models report their own dimension; embedding.dimension sizes
	// the hash embedder only.
	opts := []embedding.Option{embedding.WithBatchSize(cfg.Embedding.BatchSize)}
	if cfg.Embedding.TimeoutSecs > 0 {
		opts = append(opts, embedding.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
		}))
	}

	switch cfg.Embedding.Provider {
	case "hash":
		return embedding.NewHashEmbedder(cfg.Embedding.Dimension), nil
	case "openai":
		var (
			e   *embedding.OpenAIEmbedder
			err error
		)
		if cfg.Embedding.BaseURL != "" {
			e, err = embedding.NewOpenAICompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL, opts...)
		} else {
			e, err = embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		return e, nil
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// closableIndex is an index that owns resources.
type closableIndex interface {
	port.Index
	io.Closer
}

func openIndex(cfg *config.Config, root string, embedder port.Embedder) (closableIndex, error) {
	dir := indexDir(cfg, root)

	switch cfg.Index.Backend {
	case "bolt":
		st, err := store.NewBoltVectorStore(config.IndexDBPath(dir))
		if err != nil {
			return nil, fmt.Errorf("failed to open index store: %w", err)
		}
		return index.NewEmbeddingIndex(cfg.Index.Collection, embedder, st), nil
	case "chromem":
		ix, err := chromemstore.New(config.ChromemPath(dir), cfg.Index.Collection, embedder)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem collection: %w", err)
		}
		return ix, nil
	case "memory":
		return index.NewEmbeddingIndex(cfg.Index.Collection, embedder, memstore.NewMemoryStore()), nil
	default:
		return nil, fmt.Errorf("unknown index backend: %s", cfg.Index.Backend)
	}
}
