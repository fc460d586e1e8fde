package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"pin-mapper/internal/pin"
)

// DefaultDebounce is how long a file must stay quiet before it is reloaded.
const DefaultDebounce = 200 * time.Millisecond

// ReloadFunc receives the decoded definition after the watched file changed,
// or the error that prevented decoding it.
type ReloadFunc func(def pin.CompositeDefinition, err error)

// Watcher reloads a definition file whenever it is written. The parent
// directory is watched so editors that replace the file are followed.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	onReload ReloadFunc
	logger   *zap.Logger

	debounce time.Duration
	pending  time.Time
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher returns a watcher for path. Start must be called to begin
// watching.
func NewWatcher(path string, onReload ReloadFunc, logger *zap.Logger) (*Watcher, error) {
	if _, err := FormatFromPath(path); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		watcher:  fw,
		path:     abs,
		onReload: onReload,
		logger:   logger.Named("watcher").With(zap.String("path", abs)),
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period. It has no effect once started or
// for non-positive durations.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running && d > 0 {
		w.debounce = d
	}
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()

		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.logger.Debug("watching")

	go w.run(ctx)

	return nil
}

// Stop ends watching and waits for the background goroutine. It is safe to
// call Stop on a watcher that was never started.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}

	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

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

			w.logger.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	w.logger.Debug("file changed", zap.Stringer("op", event.Op))

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// flush reloads the file once it has been quiet for the debounce period.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	def, err := LoadFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("file removed before reload")
		return
	}

	if err != nil {
		w.logger.Warn("reload failed", zap.Error(err))
	}

	w.onReload(def, err)
}
