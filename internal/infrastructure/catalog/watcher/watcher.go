package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/youthguide/opportunity-assistant/internal/core/ports"
	"github.com/youthguide/opportunity-assistant/internal/observability/metrics"
)

const defaultInterval = 30 * time.Second

// Watcher polls a catalog file for rewrites. The scrapers replace the file
// atomically, so a modification-time change means a complete new catalog; the
// watcher then publishes an invalidation event so API instances drop their
// cached snapshot before the TTL expires.
type Watcher struct {
	source   string
	path     string
	interval time.Duration
	events   ports.CatalogEvents
	metrics  *metrics.WorkerMetrics
	logger   *slog.Logger

	lastModTime time.Time
}

func New(source, path string, interval time.Duration, events ports.CatalogEvents, m *metrics.WorkerMetrics, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		source:   source,
		path:     path,
		interval: interval,
		events:   events,
		metrics:  m,
		logger:   logger,
	}
}

// Run polls until ctx is done. The first observation only primes the
// baseline so a worker restart does not publish a spurious event.
func (w *Watcher) Run(ctx context.Context) {
	if info, err := os.Stat(w.path); err == nil {
		w.lastModTime = info.ModTime()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *Watcher) check(ctx context.Context) {
	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn("catalog_stat_failed", "path", w.path, "error", err)
		if w.metrics != nil {
			w.metrics.RecordCheck("stat_error")
		}
		return
	}

	if !info.ModTime().After(w.lastModTime) {
		if w.metrics != nil {
			w.metrics.RecordCheck("unchanged")
		}
		return
	}

	// Advance the baseline only after a successful publish so a NATS outage
	// is retried on the next tick.
	if err := w.events.PublishCatalogUpdated(ctx, w.source); err != nil {
		w.logger.Warn("catalog_event_publish_failed", "source", w.source, "error", err)
		if w.metrics != nil {
			w.metrics.RecordPublishFailure()
		}
		return
	}
	w.lastModTime = info.ModTime()

	w.logger.Info("catalog_updated", "source", w.source, "mod_time", info.ModTime())
	if w.metrics != nil {
		w.metrics.RecordCheck("changed")
	}
}
