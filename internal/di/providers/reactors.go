package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/shellhookapp/shellhook-server/internal/config"
	"github.com/shellhookapp/shellhook-server/internal/errors"
	"github.com/shellhookapp/shellhook-server/internal/logger"
	"github.com/shellhookapp/shellhook-server/internal/reaction"
	"github.com/shellhookapp/shellhook-server/internal/sse"
)

// ReactorSet holds the reactors built from the reactions file, with
// Shutdownable so owned executor pools are torn down with the container.
type ReactorSet struct {
	Reactors []*reaction.Reactor
}

// Shutdown implements do.Shutdownable.
func (s *ReactorSet) Shutdown() error {
	var firstErr error
	for _, r := range s.Reactors {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ProvideReactors builds one reactor per entry in the reactions file.
// Reactors with their own executor section get an owned pool; the rest
// borrow the shared one.
func ProvideReactors(i do.Injector) (*ReactorSet, error) {
	reactions := do.MustInvoke[*config.ReactionsFile](i)
	shared := do.MustInvoke[*SharedExecutorHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := reaction.RegisterBuiltinGenerators(); err != nil {
		return nil, err
	}

	set := &ReactorSet{Reactors: make([]*reaction.Reactor, 0, len(reactions.Reactors))}

	for idx, rc := range reactions.Reactors {
		var generator reaction.GeneratorFunc
		if rc.Generator != "" {
			fn, err := reaction.LookupGenerator(rc.Generator)
			if err != nil {
				return nil, errors.Wrapf(err, errors.CodeConfiguration,
					"reactor %d references unknown generator %q", idx, rc.Generator)
			}
			generator = fn
		}

		source := reaction.BorrowedExecutor(shared.Pool)
		if rc.Executor != nil {
			source = reaction.OwnedExecutor(executorConfigFromFile(*rc.Executor))
		}

		r := reaction.New(reaction.Options{
			PluginID:         rc.ID,
			CommandTemplates: rc.CommandTemplates,
			CommandGenerator: generator,
			Executor:         source,
			Logger:           log.Logger,
			OnReady: func(pluginID string) {
				log.Info("Reactor ready", "plugin_id", pluginID)
			},
			// The reactor logs its own failures; the sink puts them on the
			// event stream so connected clients see them too.
			OnError: func(msg string, err error) {
				sseHandle.Manager.Emit(sse.Event{
					Type:      sse.EventReactionFailed,
					PluginID:  rc.ID,
					Message:   msg,
					Error:     err.Error(),
					Timestamp: time.Now(),
				})
			},
		})
		set.Reactors = append(set.Reactors, r)
	}

	return set, nil
}
