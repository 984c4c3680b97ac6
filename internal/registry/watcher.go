package registry

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dealdesk/internal/logging"
)

// OverlayWatcher watches a user evaluator overlay file and rebuilds the
// registry when it changes. A rebuild that fails validation is logged and
// discarded; the previous registry keeps serving.
type OverlayWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	overlayPath string
	onReload    func(*Registry)
	debounceDur time.Duration
	pendingAt   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewOverlayWatcher creates a watcher for the given overlay path. onReload
// receives each successfully rebuilt registry.
func NewOverlayWatcher(overlayPath string, onReload func(*Registry)) (*OverlayWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &OverlayWatcher{
		watcher:     watcher,
		overlayPath: overlayPath,
		onReload:    onReload,
		debounceDur: 500 * time.Millisecond, // Debounce rapid saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the watch loop runs in a goroutine.
func (w *OverlayWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.mu.Unlock()

	// Watch the containing directory: editors replace files on save, which
	// drops a watch placed on the file itself.
	dir := filepath.Dir(w.overlayPath)
	if err := w.watcher.Add(dir); err != nil {
		logging.RegistryWarn("overlay watch failed for %s: %v", dir, err)
	} else {
		logging.Registry("watching overlay directory: %s", dir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for cleanup.
func (w *OverlayWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryRegistry).Error("error closing overlay watcher: %v", err)
	}
	logging.Registry("overlay watcher stopped")
}

// run is the main event loop for the watcher.
func (w *OverlayWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryRegistry).Error("overlay watcher error: %v", err)

		case <-debounceTicker.C:
			w.processPending()
		}
	}
}

func (w *OverlayWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.overlayPath) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return // Ignore chmod, etc.
	}

	w.mu.Lock()
	w.pendingAt = time.Now()
	w.mu.Unlock()
}

// processPending rebuilds the registry once changes have settled past the
// debounce window.
func (w *OverlayWatcher) processPending() {
	w.mu.Lock()
	if w.pendingAt.IsZero() || time.Since(w.pendingAt) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pendingAt = time.Time{}
	w.mu.Unlock()

	reg, err := NewWithOverlay(w.overlayPath)
	if err != nil {
		logging.RegistryWarn("overlay reload rejected: %v", err)
		return
	}

	logging.Registry("overlay reloaded: %d definitions", reg.Len())
	if w.onReload != nil {
		w.onReload(reg)
	}
}

// IsWatching returns true if the watcher is currently running.
func (w *OverlayWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
