package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shellhookapp/shellhook-server/internal/config"
	"github.com/shellhookapp/shellhook-server/internal/logger"
	"github.com/shellhookapp/shellhook-server/internal/reaction"
	"github.com/shellhookapp/shellhook-server/internal/sse"
	"github.com/shellhookapp/shellhook-server/internal/watcher"
)

// FileWatcherHandle wraps the file watcher with shutdown capability.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the filesystem watcher and the bridge that
// feeds its events to the reactors. Each event fans out to every reactor;
// results are broadcast over SSE.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	reactions := do.MustInvoke[*config.ReactionsFile](i)
	set := do.MustInvoke[*ReactorSet](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	settleDelay, err := reactions.ParseSettleDelay()
	if err != nil {
		return nil, err
	}

	w, err := watcher.New(log.Logger, watcher.Options{
		IgnorePatterns: reactions.IgnorePatterns,
		SettleDelay:    settleDelay,
		IgnoreHidden:   true,
	})
	if err != nil {
		return nil, err
	}

	for _, path := range reactions.WatchPaths {
		if err := w.Watch(path); err != nil {
			return nil, err
		}
		log.Info("Watching path", "path", path)
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("File watcher error", "error", err)
		}
	}()

	// Bridge watcher events to the reactors.
	go runBridge(ctx, w.Events(), w.Errors(), set.Reactors, sseHandle.Manager, log)

	log.Info("File watcher started",
		"watch_paths", len(reactions.WatchPaths),
		"reactors", len(set.Reactors),
	)

	return &FileWatcherHandle{Watcher: w, cancel: cancel}, nil
}

// runBridge consumes watcher output until the context is cancelled or the
// watcher shuts down and closes its channels. A closed channel must end the
// loop, not feed zero-valued events to the reactors.
func runBridge(ctx context.Context, events <-chan reaction.Event, errs <-chan error, reactors []*reaction.Reactor, manager *sse.Manager, log *logger.Logger) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			dispatch(ctx, event, reactors, manager, log)
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Warn("file watcher error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

// dispatch fans one event out to every reactor. Reactions run concurrently;
// ordering within a reactor's command batch is the reactor's concern, the
// bridge imposes none across reactors.
func dispatch(ctx context.Context, event reaction.Event, reactors []*reaction.Reactor, manager *sse.Manager, log *logger.Logger) {
	for _, r := range reactors {
		go func(r *reaction.Reactor) {
			result := r.React(ctx, event)
			if !result.Success {
				log.Warn("reaction failed",
					"plugin_id", r.ID(),
					"event_type", event.Type.String(),
					"path", event.FullPath,
					"error", result.Err,
				)
			}
			manager.Emit(sse.NewResultEvent(result))
		}(r)
	}
}
