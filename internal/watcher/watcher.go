// Package watcher monitors filesystem paths and emits reaction events.
//
// It wraps fsnotify with a settle delay: write bursts for the same file are
// coalesced, and an event is only emitted once size and mtime stop changing.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/shellhookapp/shellhook-server/internal/reaction"
)

// Watcher monitors filesystem changes and emits reaction.Event values.
type Watcher struct {
	logger *slog.Logger
	opts   Options
	fsw    *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingEvent // path -> settle state
	known   map[string]bool          // path -> isDir, for add/change and unlink/unlinkDir

	events chan reaction.Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup

	// emitMu orders in-flight settle-timer emits against Stop closing the
	// channels. Timers fire on their own goroutines outside wg.
	emitMu sync.RWMutex
	closed bool
}

// pendingEvent tracks a file that may still be changing.
type pendingEvent struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates a file watcher.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:  logger,
		opts:    opts,
		fsw:     fsw,
		pending: make(map[string]*pendingEvent),
		known:   make(map[string]bool),
		events:  make(chan reaction.Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds a path to be monitored. Directories are watched recursively.
// Files present when the watch is added are recorded as known, so they later
// produce change events rather than add events.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return w.watchDir(path)
	}

	w.markKnown(path, false)
	return w.fsw.Add(filepath.Dir(path))
}

// watchDir recursively watches a directory and records its contents.
func (w *Watcher) watchDir(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("failed to access path", "path", p, "error", err)
			return nil
		}

		if w.opts.shouldIgnore(p) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		w.markKnown(p, info.IsDir())

		if !info.IsDir() {
			return nil
		}

		if err := w.fsw.Add(p); err != nil {
			w.logger.Error("failed to add watch", "path", p, "error", err)
			return nil
		}

		w.logger.Debug("added watch", "path", p)
		return nil
	})
}

// Start begins watching for events. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	<-ctx.Done()
	return nil
}

// Events returns the channel for receiving reaction events.
func (w *Watcher) Events() <-chan reaction.Event {
	return w.events
}

// Errors returns the channel for receiving errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)

	// Cancel all pending settle timers.
	w.mu.Lock()
	for _, pending := range w.pending {
		pending.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	w.fsw.Close()
	w.wg.Wait()

	// Any emit already past the closed check holds emitMu for reading and,
	// with done closed, cannot block. Once the write lock is held no emit can
	// touch the channels again.
	w.emitMu.Lock()
	w.closed = true
	w.emitMu.Unlock()

	close(w.events)
	close(w.errors)

	return nil
}

// processEvents consumes raw fsnotify events.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.errors <- err
		}
	}
}

// handleFsnotifyEvent maps one raw event onto the reaction event model.
func (w *Watcher) handleFsnotifyEvent(event fsnotify.Event) {
	path := event.Name

	if w.opts.shouldIgnore(path) {
		return
	}

	// Directory creation is emitted immediately and extends the watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.markKnown(path, true)
			if err := w.watchDir(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			w.emit(reaction.Event{
				Type:     reaction.EventAddDir,
				FullPath: path,
				Stats:    reaction.StatsFromFileInfo(info),
			})
			return
		}
	}

	// Deletion and rename-away. No stat is possible; the known map decides
	// between unlink and unlinkDir.
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.cancelPending(path)
		eventType := reaction.EventUnlink
		if w.forgetKnown(path) {
			eventType = reaction.EventUnlinkDir
		}
		w.emit(reaction.Event{
			Type:     eventType,
			FullPath: path,
		})
		return
	}

	// Writes and file creation settle before emitting.
	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		w.startSettling(path)
	}
}

// startSettling begins or restarts the settle window for a file.
func (w *Watcher) startSettling(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		w.logger.Warn("failed to stat file", "path", path, "error", err)
		delete(w.pending, path)
		return
	}

	// Directories do not settle.
	if info.IsDir() {
		return
	}

	pending := &pendingEvent{
		size:    info.Size(),
		modTime: info.ModTime(),
	}
	pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		w.checkSettled(path)
	})

	w.pending[path] = pending
}

// checkSettled emits an event once the file stops changing.
func (w *Watcher) checkSettled(path string) {
	w.mu.Lock()

	pending, exists := w.pending[path]
	if !exists {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// File disappeared during the settle window.
		delete(w.pending, path)
		delete(w.known, path)
		w.mu.Unlock()
		w.emit(reaction.Event{
			Type:     reaction.EventUnlink,
			FullPath: path,
		})
		return
	}

	// Still changing, restart the window.
	if info.Size() != pending.size || !info.ModTime().Equal(pending.modTime) {
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
			w.checkSettled(path)
		})
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	eventType := reaction.EventAdd
	if _, seen := w.known[path]; seen {
		eventType = reaction.EventChange
	}
	w.known[path] = false
	w.mu.Unlock()

	w.emit(reaction.Event{
		Type:     eventType,
		FullPath: path,
		Stats:    reaction.StatsFromFileInfo(info),
	})
}

// cancelPending drops the settle state for a path.
func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) markKnown(path string, isDir bool) {
	w.mu.Lock()
	w.known[path] = isDir
	w.mu.Unlock()
}

// forgetKnown removes a path from the known map and reports whether it was a
// directory.
func (w *Watcher) forgetKnown(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	isDir := w.known[path]
	delete(w.known, path)
	return isDir
}

// emit stamps the event with a UUID and sends it. Emits racing Stop are
// dropped rather than sent on a closed channel.
func (w *Watcher) emit(event reaction.Event) {
	event.UUID = uuid.NewString()

	w.emitMu.RLock()
	defer w.emitMu.RUnlock()

	if w.closed {
		return
	}

	select {
	case w.events <- event:
	case <-w.done:
	}
}
