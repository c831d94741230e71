// Package deckwatch re-runs a handler whenever a deck file in a directory changes.
package deckwatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/DeckOps/internal/ygo/ydk"
)

// Handler is called with the path of a changed deck file.
type Handler func(ctx context.Context, path string)

// Options configures a Watcher.
type Options struct {
	// Debounce collapses bursts of events for the same file. Default: 250ms
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher watches a directory for created or modified .ydk files.
// The handler runs on the Run goroutine, one file at a time.
type Watcher struct {
	dir      string
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
}

// New creates a watcher for dir.
func New(dir string, handler Handler, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		handler:  handler,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		pending:  make(map[string]*time.Timer),
		ready:    make(chan string, 16),
	}
}

// IsDeckFile reports whether path has the deck file extension.
func IsDeckFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ydk.FileExtension)
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching deck directory", "dir", w.dir)

	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !IsDeckFile(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", err)
		case path := <-w.ready:
			w.handler(ctx, path)
		}
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		if !w.fire(path, t) {
			return
		}
		select {
		case w.ready <- path:
		case <-ctx.Done():
		}
	})
	w.pending[path] = t
}

// fire clears the pending entry for path if t is still the timer scheduled for it.
// A timer replaced after it started firing reports false and delivers nothing.
func (w *Watcher) fire(path string, t *time.Timer) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending[path] != t {
		return false
	}
	delete(w.pending, path)
	return true
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}
