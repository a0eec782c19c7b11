package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/youthguide/opportunity-assistant/internal/config"
	"github.com/youthguide/opportunity-assistant/internal/infrastructure/catalog/watcher"
	"github.com/youthguide/opportunity-assistant/internal/infrastructure/queue/nats"
	"github.com/youthguide/opportunity-assistant/internal/infrastructure/resilience"
	"github.com/youthguide/opportunity-assistant/internal/observability/logging"
	"github.com/youthguide/opportunity-assistant/internal/observability/metrics"
)

// The worker watches the production catalog file that the scraper pipeline
// rewrites in place and announces changes to the api instances over NATS.
func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		log.Fatalf("init message queue: %v", err)
	}
	defer queue.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:         ":" + cfg.WorkerMetricsPort,
		Handler:      workerMetrics.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()

	w := watcher.New(
		cfg.CatalogSource,
		cfg.CatalogPath,
		time.Duration(cfg.WorkerPollSeconds)*time.Second,
		queue,
		workerMetrics,
		logger,
	)
	logger.Info("worker_watching", "path", cfg.CatalogPath, "interval_seconds", cfg.WorkerPollSeconds)
	w.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
