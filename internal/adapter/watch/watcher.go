package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SnapshotWatcher watches the data directory and fires a callback once
// the snapshot files stop changing. Ingest rewrites the index by rename
// and the corpus in place, so both show up as events on the directory.
type SnapshotWatcher struct {
	dir          string
	names        map[string]struct{}
	onChange     func()
	debounceTime time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	pending bool
	last    time.Time
}

// NewSnapshotWatcher watches dir for changes to the named files.
func NewSnapshotWatcher(dir string, names []string, onChange func(), logger *slog.Logger) *SnapshotWatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &SnapshotWatcher{
		dir:          dir,
		names:        set,
		onChange:     onChange,
		debounceTime: 500 * time.Millisecond,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled.
func (w *SnapshotWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for new snapshots", "dir", w.dir)

	ticker := time.NewTicker(w.debounceTime / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-ticker.C:
			if w.due() {
				w.onChange()
			}
		}
	}
}

func (w *SnapshotWatcher) handleEvent(event fsnotify.Event) {
	if _, ok := w.names[filepath.Base(event.Name)]; !ok {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	w.pending = true
	w.last = time.Now()
	w.mu.Unlock()
}

// due reports whether a change is pending and has been quiet for the
// debounce period, clearing the pending flag when it has.
func (w *SnapshotWatcher) due() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || time.Since(w.last) < w.debounceTime {
		return false
	}
	w.pending = false
	return true
}
