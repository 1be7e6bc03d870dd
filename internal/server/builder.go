package server

import (
	"context"
	"fmt"
	"log"

	"github.com/mohammad-safakhou/paperchat/config"
	"github.com/mohammad-safakhou/paperchat/internal/agent/core"
	"github.com/mohammad-safakhou/paperchat/internal/agent/graph"
	"github.com/mohammad-safakhou/paperchat/internal/ingest"
	"github.com/mohammad-safakhou/paperchat/internal/memory"
	"github.com/mohammad-safakhou/paperchat/internal/memory/inmemory"
	redissaver "github.com/mohammad-safakhou/paperchat/internal/memory/redis"
	"github.com/mohammad-safakhou/paperchat/internal/retrieval"
	"github.com/mohammad-safakhou/paperchat/provider"
	"github.com/mohammad-safakhou/paperchat/tools/observability"
	"github.com/mohammad-safakhou/paperchat/tools/vector"
	"github.com/mohammad-safakhou/paperchat/tools/web_fetch"
	"github.com/mohammad-safakhou/paperchat/tools/web_search"
)

// App bundles everything built from configuration: the workflow plus the
// ingestion pipeline that shares its vector store and embedder.
type App struct {
	Workflow *graph.Workflow
	Pipeline *ingest.Pipeline
	Tracer   observability.Tracer
}

// Build wires the full dependency graph from configuration. Capability
// selection is resolved once here; nothing downstream inspects provider
// names again.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	llm, err := provider.NewProvider(provider.Client(cfg.LLM.Provider), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("building llm provider: %w", err)
	}

	tracer, err := observability.NewTracer(
		observability.Provider(cfg.Observability.Provider),
		observability.LangfuseConfig{
			Host:      cfg.Observability.Langfuse.Host,
			PublicKey: cfg.Observability.Langfuse.PublicKey,
			SecretKey: cfg.Observability.Langfuse.SecretKey,
			Timeout:   cfg.Observability.Langfuse.Timeout,
		})
	if err != nil {
		return nil, fmt.Errorf("building tracer: %w", err)
	}

	saver, err := buildSaver(ctx, cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("building checkpoint store: %w", err)
	}

	store, err := vector.NewStore(ctx, vector.Provider(cfg.Vector.Provider), vector.Config{
		Host:       cfg.Vector.Host,
		Port:       cfg.Vector.Port,
		Collection: cfg.Vector.Collection,
		VectorSize: cfg.Vector.VectorSize,
		Distance:   cfg.Vector.Distance,
		Path:       cfg.Vector.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("building vector store: %w", err)
	}

	dense := retrieval.New(llm, store)
	var retriever core.DocumentRetriever = dense
	var hybrid *retrieval.HybridRetriever
	if cfg.Retrieval.Hybrid {
		hybrid, err = retrieval.NewHybrid(dense)
		if err != nil {
			return nil, fmt.Errorf("building hybrid retriever: %w", err)
		}
		retriever = hybrid
	}

	searcher, err := buildSearcher(cfg.WebSearch)
	if err != nil {
		return nil, fmt.Errorf("building web searcher: %w", err)
	}

	tools := []core.Tool{
		&core.PDFRetrievalTool{
			Retriever:     retriever,
			TopK:          cfg.Retrieval.TopK,
			MinSimilarity: cfg.Retrieval.MinSimilarity,
		},
		&core.WebSearchTool{
			Searcher:   searcher,
			MaxResults: cfg.WebSearch.MaxResults,
		},
	}

	orchestrator := core.NewOrchestrator(cfg.Agents, llm, tracer, nil)
	clarification := core.NewClarification(cfg.Agents, llm, tracer, nil)
	research := core.NewResearch(cfg.Agents, llm, tools, tracer, nil)
	synthesis := core.NewSynthesis(cfg.Agents, llm, tracer, nil)

	workflow := graph.New(orchestrator, clarification, research, synthesis, saver, nil)

	chunker, err := ingest.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, cfg.Ingest.Encoding)
	if err != nil {
		return nil, fmt.Errorf("building chunker: %w", err)
	}
	pipeline := ingest.NewPipeline(chunker, llm, store, hybrid, cfg.Ingest.BatchSize, nil)

	return &App{Workflow: workflow, Pipeline: pipeline, Tracer: tracer}, nil
}

func buildSaver(ctx context.Context, cfg config.MemoryConfig) (memory.Saver, error) {
	switch memory.Provider(cfg.Provider) {
	case memory.RedisProvider:
		client, err := redissaver.Conn(ctx, memory.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return redissaver.New(client, cfg.TTL), nil
	case memory.InMemoryProvider:
		return inmemory.New(), nil
	case memory.NoneProvider, "":
		// Persistence is optional; the workflow degrades per its contract.
		log.Printf("[BUILD] no checkpoint store configured, sessions will not persist")
		return nil, nil
	default:
		return nil, memory.ErrUnsupportedProvider
	}
}

func buildSearcher(cfg config.WebSearchConfig) (core.WebSearcher, error) {
	searcher, err := web_search.NewWebSearcher(web_search.Provider(cfg.Provider), cfg.APIKey)
	if err != nil {
		return nil, err
	}
	if !cfg.FetchContent {
		return searcher, nil
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetcher), cfg.FetchTimeout, 0)
	if err != nil {
		return nil, err
	}
	return web_search.FetchingSearcher{Searcher: searcher, Fetcher: fetcher}, nil
}
