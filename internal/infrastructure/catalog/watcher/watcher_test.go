package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type eventsFake struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (f *eventsFake) PublishCatalogUpdated(_ context.Context, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, source)
	return nil
}

func (f *eventsFake) SubscribeCatalogUpdated(context.Context, func(context.Context, string) error) error {
	return nil
}

func (f *eventsFake) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func TestWatcherPublishesOnModTimeChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	events := &eventsFake{}
	w := New("production", path, time.Minute, events, nil, nil)
	w.lastModTime = time.Now().Add(-time.Hour)

	w.check(context.Background())
	if events.count() != 1 {
		t.Fatalf("expected one publish, got %d", events.count())
	}

	// Unchanged mod time must not publish again.
	w.check(context.Background())
	if events.count() != 1 {
		t.Fatalf("unchanged file published again, got %d", events.count())
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	w.check(context.Background())
	if events.count() != 2 {
		t.Fatalf("expected publish after rewrite, got %d", events.count())
	}
}

func TestWatcherMissingFileDoesNotPublish(t *testing.T) {
	events := &eventsFake{}
	w := New("production", filepath.Join(t.TempDir(), "absent.json"), time.Minute, events, nil, nil)

	w.check(context.Background())
	if events.count() != 0 {
		t.Fatalf("missing file should not publish, got %d", events.count())
	}
}

func TestWatcherKeepsBaselineOnPublishFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	events := &eventsFake{err: errors.New("nats down")}
	w := New("production", path, time.Minute, events, nil, nil)
	w.lastModTime = time.Now().Add(-time.Hour)

	w.check(context.Background())
	if events.count() != 0 {
		t.Fatalf("failed publish recorded as success")
	}
}
