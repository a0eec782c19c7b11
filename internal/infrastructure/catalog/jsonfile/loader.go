package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
)

const defaultTTL = 5 * time.Minute

// Loader serves catalog snapshots from a JSON file produced by the scraping
// pipeline. Snapshots are cached behind an atomic pointer for the configured
// TTL; switching the active source invalidates the cache. All methods are
// safe for concurrent use.
type Loader struct {
	sources map[string]string
	ttl     time.Duration
	now     func() time.Time

	mu     sync.Mutex // serializes reloads and source switches
	active atomic.Value
	cache  atomic.Pointer[domain.Catalog]
}

func New(sources map[string]string, active string, ttl time.Duration) (*Loader, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one catalog source is required")
	}
	if _, ok := sources[active]; !ok {
		return nil, fmt.Errorf("unknown active catalog source %q", active)
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	l := &Loader{
		sources: sources,
		ttl:     ttl,
		now:     time.Now,
	}
	l.active.Store(active)
	return l, nil
}

func (l *Loader) ActiveSource() string {
	return l.active.Load().(string)
}

// SelectSource switches the backing catalog file. A change drops the cached
// snapshot so the next read hits the new source.
func (l *Loader) SelectSource(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sources[name]; !ok {
		return domain.WrapError(domain.ErrInvalidInput, "select catalog source", fmt.Errorf("unknown source %q", name))
	}
	if l.active.Load().(string) != name {
		l.active.Store(name)
		l.cache.Store(nil)
	}
	return nil
}

func (l *Loader) Invalidate() {
	l.cache.Store(nil)
}

// Snapshot returns the current catalog, reloading from disk when the cached
// copy expired or was invalidated.
func (l *Loader) Snapshot(ctx context.Context) (*domain.Catalog, error) {
	if snap := l.cache.Load(); snap != nil &&
		snap.SourceName == l.ActiveSource() &&
		l.now().Sub(snap.LoadedAt) < l.ttl {
		return snap, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another request may have reloaded while we waited on the lock.
	if snap := l.cache.Load(); snap != nil &&
		snap.SourceName == l.ActiveSource() &&
		l.now().Sub(snap.LoadedAt) < l.ttl {
		return snap, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := l.ActiveSource()
	snap, err := l.loadFile(source, l.sources[source])
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpstreamStore, "load catalog", err)
	}
	l.cache.Store(snap)
	return snap, nil
}

func (l *Loader) loadFile(source, path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	catalog.Opportunities = normalizeAll(catalog.Opportunities)
	catalog.TotalCount = len(catalog.Opportunities)
	catalog.SourceName = source
	catalog.LoadedAt = l.now()
	return &catalog, nil
}

func normalizeAll(records []domain.Opportunity) []domain.Opportunity {
	out := make([]domain.Opportunity, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, opp := range records {
		norm, ok := normalizeOpportunity(opp)
		if !ok {
			continue
		}
		if _, dup := seen[norm.ID]; dup {
			continue
		}
		seen[norm.ID] = struct{}{}
		out = append(out, norm)
	}
	// Stable record order regardless of scraper output order keeps retrieval
	// deterministic across reloads of the same file.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
