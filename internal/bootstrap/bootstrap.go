package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/youthguide/opportunity-assistant/internal/config"
	"github.com/youthguide/opportunity-assistant/internal/core/ports"
	"github.com/youthguide/opportunity-assistant/internal/core/usecase"
	"github.com/youthguide/opportunity-assistant/internal/infrastructure/catalog/jsonfile"
	"github.com/youthguide/opportunity-assistant/internal/infrastructure/llm/ollama"
	"github.com/youthguide/opportunity-assistant/internal/infrastructure/queue/nats"
	"github.com/youthguide/opportunity-assistant/internal/infrastructure/repository/postgres"
	"github.com/youthguide/opportunity-assistant/internal/infrastructure/resilience"
	"github.com/youthguide/opportunity-assistant/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Catalog ports.CatalogSource
	Events  ports.CatalogEvents
	Store   ports.ConversationStore

	ChatUC   ports.ChatService
	Searcher ports.OpportunitySearcher
	Metrics  *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewConversationRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	sources, err := cfg.CatalogSources()
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("resolve catalog sources: %w", err)
	}
	loader, err := jsonfile.New(sources, cfg.CatalogSource, time.Duration(cfg.CatalogTTLSeconds)*time.Second)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init catalog loader: %w", err)
	}

	// Pipeline model calls get one attempt each; every stage already has its
	// own fallback, so retry storms would only add latency.
	modelExecutor := resilience.NewExecutor(resilience.SingleAttemptConfig())
	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, modelExecutor)
	generator := ollama.NewGenerator(ollamaClient)

	retriever := usecase.NewLexicalRetriever(loader)
	reranker, err := usecase.NewSemanticReranker(generator, usecase.RerankConfig{
		TopK:             cfg.RerankTopK,
		MinSemanticScore: cfg.RerankMinSemanticScore,
		Concurrency:      cfg.RerankConcurrency,
		ScoreCallTimeout: time.Duration(cfg.RerankCallTimeoutSecs) * time.Second,
	}, logger)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init reranker: %w", err)
	}
	serverMetrics := metrics.NewHTTPServerMetrics("api")
	degraded := usecase.StageRecorder(func(stage string) {
		serverMetrics.RecordDegradedStage("api", stage)
	})

	scoper := usecase.NewIntentScoper(generator, time.Duration(cfg.ChatIntentTimeoutSecs)*time.Second, degraded, logger)
	memory := usecase.NewConversationMemory(repo, cfg.MemoryEnabled, cfg.MemoryTurnWindow, degraded, logger)

	chatUC := usecase.NewChatUseCase(retriever, reranker, scoper, memory, repo, generator, usecase.ChatConfig{
		RerankEnabled:      cfg.RerankEnabled,
		StageOneTopK:       cfg.RetrievalTopK,
		MinLexicalScore:    cfg.RetrievalMinScore,
		GoodMatchThreshold: cfg.ChatGoodMatchThreshold,
		PipelineTimeout:    time.Duration(cfg.ChatPipelineTimeoutSecs) * time.Second,
		IntentTimeout:      time.Duration(cfg.ChatIntentTimeoutSecs) * time.Second,
		ComposeTimeout:     time.Duration(cfg.ChatComposeTimeoutSecs) * time.Second,
	}, degraded, logger)

	// Other instances announce catalog refreshes over the queue; drop the
	// local snapshot so the next request reloads.
	go func() {
		err := queue.SubscribeCatalogUpdated(ctx, func(_ context.Context, source string) error {
			logger.Info("catalog_update_received", "source", source)
			loader.Invalidate()
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("catalog_subscribe_failed", "error", err)
		}
	}()

	return &App{
		Config: cfg,

		Catalog: loader,
		Events:  queue,
		Store:   repo,

		ChatUC:   chatUC,
		Searcher: retriever,
		Metrics:  serverMetrics,

		closeFn: func() {
			reranker.Close()
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
