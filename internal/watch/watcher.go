// Package watch keeps the match index live: filesystem events are
// debounced and settled batches trigger an incremental scan.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/regexle/regexle/internal/logging"
	"github.com/regexle/regexle/internal/scanner"
	"github.com/regexle/regexle/internal/store"
)

// Watcher watches a workspace and re-extracts on change.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	scanner     *scanner.Scanner
	index       *store.Store
	root        string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	log         *zap.Logger

	// OnRescan, when set, is called after each triggered incremental
	// scan. Used by the CLI to print progress and by tests.
	OnRescan func(*scanner.IncrementalResult)

	stats Stats
}

// Stats tracks watcher activity for status output and tests.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	Rescans       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// New creates a Watcher over root.
func New(root string, sc *scanner.Scanner, idx *store.Store) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     watcher,
		scanner:     sc,
		index:       idx,
		root:        root,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // settle rapid saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		log:         logging.L("watch"),
	}, nil
}

// SetDebounce overrides the settle window (tests use a short one).
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDur = d
}

// Start registers the workspace directories and begins the event loop
// in a goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addDirs(w.root); err != nil {
		return err
	}
	w.log.Info("watching workspace", zap.String("root", w.root))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
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
		w.log.Error("error closing watcher", zap.Error(err))
	}
	w.log.Info("watcher stopped")
}

// addDirs registers root and every non-ignored subdirectory.
// fsnotify watches are not recursive, and watching node_modules or
// target just burns inotify descriptors.
func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || w.scanner.IgnoresDir(root, path)) {
			return filepath.SkipDir
		}
		if addErr := w.watcher.Add(path); addErr != nil {
			w.log.Warn("failed to watch directory", zap.String("path", path), zap.Error(addErr))
		}
		return nil
	})
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	settleTicker := time.NewTicker(100 * time.Millisecond)
	defer settleTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("context cancelled")
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
			w.log.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-settleTicker.C:
			w.processSettled(ctx)
		}
	}
}

// handleEvent records a single filesystem event for debouncing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		// New directories need their own watch, unless the scanner
		// would skip them anyway.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.scanner.IgnoresDir(w.root, event.Name) {
				_ = w.watcher.Add(event.Name)
			}
			return
		}
		w.mu.Lock()
		w.stats.FilesCreated++
		w.mu.Unlock()
	case event.Op&fsnotify.Write != 0:
		w.mu.Lock()
		w.stats.FilesModified++
		w.mu.Unlock()
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		w.mu.Lock()
		w.stats.FilesDeleted++
		w.mu.Unlock()
	default:
		return // chmod etc.
	}

	w.log.Debug("fs event", zap.String("op", event.Op.String()), zap.String("path", event.Name))

	w.mu.Lock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// processSettled triggers one incremental scan once all pending events
// have aged past the debounce window.
func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	if len(w.debounceMap) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	for _, eventTime := range w.debounceMap {
		if now.Sub(eventTime) < w.debounceDur {
			w.mu.Unlock()
			return // still settling
		}
	}
	w.debounceMap = make(map[string]time.Time)
	w.mu.Unlock()

	result, err := w.scanner.ScanIncremental(ctx, w.root, w.index, scanner.IncrementalOptions{SkipWhenUnchanged: true})
	if err != nil {
		w.log.Error("incremental rescan failed", zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.stats.Rescans++
	cb := w.OnRescan
	w.mu.Unlock()

	if cb != nil {
		cb(result)
	}
}

// GetStats returns a copy of the watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
