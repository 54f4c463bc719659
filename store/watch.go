package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce collapses the burst of events an atomic save produces
// (temp write, rename, checksum rename) into a single reload.
const watchDebounce = 250 * time.Millisecond

// Watcher reloads the snapshot when the file changes on disk outside the
// running process, e.g. a manual edit or a restore. The parent directory is
// watched rather than the file itself because atomic saves replace the file
// by rename.
type Watcher struct {
	path     string
	onChange func()

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for the snapshot at path. onChange runs
// after each debounced change burst.
func NewWatcher(path string, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{path: path, onChange: onChange, watcher: fw}, nil
}

// Start begins watching until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch snapshot directory %s: %w", dir, err)
	}

	w.wg.Add(1)
	go w.eventLoop(ctx)
	zap.L().Info("watching snapshot file", zap.String("path", w.path))
	return nil
}

// Stop closes the watcher and waits for the event loop to drain. onChange
// is never invoked after Stop returns: a pending debounce timer is stopped,
// and one that already fired re-checks the stopped flag before calling out.
func (w *Watcher) Stop() {
	_ = w.watcher.Close()
	w.wg.Wait()
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zap.L().Warn("snapshot watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	// The callback runs under the mutex so that Stop, which takes the same
	// mutex after closing the watcher, cannot return while a reload is in
	// flight. onChange must not call back into the watcher.
	w.timer = time.AfterFunc(watchDebounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.stopped {
			return
		}
		zap.L().Info("snapshot changed on disk, reloading", zap.String("path", w.path))
		w.onChange()
	})
}
