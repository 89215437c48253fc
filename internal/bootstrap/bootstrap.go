package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docqa-ai/docqa/internal/config"
	"github.com/docqa-ai/docqa/internal/core/ports"
	"github.com/docqa-ai/docqa/internal/core/usecase"
	"github.com/docqa-ai/docqa/internal/infrastructure/chunking"
	"github.com/docqa-ai/docqa/internal/infrastructure/extractor"
	"github.com/docqa-ai/docqa/internal/infrastructure/llm/ollama"
	"github.com/docqa-ai/docqa/internal/infrastructure/queue/nats"
	"github.com/docqa-ai/docqa/internal/infrastructure/repository/postgres"
	"github.com/docqa-ai/docqa/internal/infrastructure/resilience"
	"github.com/docqa-ai/docqa/internal/infrastructure/storage/localfs"
	"github.com/docqa-ai/docqa/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Profile config.EmbeddingProfile

	Queue     ports.MessageQueue
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.QueryService

	WorkerMetrics *metrics.WorkerMetrics
	APIMetrics    http.Handler

	closeFn func()
}

// New wires the full application. The embedding profile is resolved first:
// everything downstream (schema, chunk store, embedder) depends on its
// dimensionality, and an unknown profile must stop startup.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	profile, err := config.ResolveEmbeddingProfile(cfg.EmbeddingProfile)
	if err != nil {
		return nil, err
	}

	chunker, err := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db, profile.Dimensions); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	repo := postgres.NewDocumentRepository(db, profile.Dimensions)
	store := postgres.NewChunkStore(db, profile.Dimensions)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	exec := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{Executor: exec})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, profile.Model, exec)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	workerMetrics := metrics.NewWorkerMetrics()
	apiRegistry := prometheus.NewRegistry()
	searchMetrics := metrics.NewSearchMetrics(apiRegistry)

	textExtractor := extractor.NewExtractor(storage)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, textExtractor, chunker, embedder, store)
	queryUC := usecase.NewQueryUseCase(embedder, store, generator, searchMetrics, usecase.QueryOptions{
		DefaultTopK:     cfg.TopK,
		RRFK:            cfg.RRFK,
		StrategyTimeout: time.Duration(cfg.StrategyTimeoutMS) * time.Millisecond,
		ContextBudget:   cfg.ContextBudgetChars,
		PreviewChars:    cfg.SourcePreviewChars,
	})

	return &App{
		Config:  cfg,
		Profile: profile,

		Queue:     queue,
		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,

		WorkerMetrics: workerMetrics,
		APIMetrics:    promhttp.HandlerFor(apiRegistry, promhttp.HandlerOpts{}),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
