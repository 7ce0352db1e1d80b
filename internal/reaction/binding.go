package reaction

import (
	"context"
	"log/slog"

	"github.com/shellhookapp/shellhook-server/internal/errors"
	"github.com/shellhookapp/shellhook-server/internal/executor"
)

// CommandExecutor is the contract of the pooled process collaborator that
// actually runs command batches. The pipeline treats it as opaque: pooling,
// sequencing within a batch and process supervision are its responsibility.
type CommandExecutor interface {
	ExecuteCommands(ctx context.Context, commands []string) ([]executor.CommandResult, error)
}

// ExecutorSource is a tagged choice between constructing a new executor pool
// from configuration (owned by the reactor, torn down with it) and binding to
// a pre-existing instance (externally owned, never torn down by the reactor).
type ExecutorSource struct {
	config   *executor.Config
	instance CommandExecutor
}

// OwnedExecutor configures the reactor to construct its own executor pool.
func OwnedExecutor(cfg executor.Config) ExecutorSource {
	return ExecutorSource{config: &cfg}
}

// BorrowedExecutor binds the reactor to an existing executor instance whose
// lifetime is managed elsewhere.
func BorrowedExecutor(inst CommandExecutor) ExecutorSource {
	return ExecutorSource{instance: inst}
}

// executorBinding is the resolved executor with ownership information.
type executorBinding struct {
	exec  CommandExecutor
	owned bool
}

// resolve turns an ExecutorSource into a live binding. A source with neither
// variant set is a configuration error.
func (s ExecutorSource) resolve(logger *slog.Logger) (*executorBinding, error) {
	switch {
	case s.instance != nil:
		return &executorBinding{exec: s.instance, owned: false}, nil
	case s.config != nil:
		pool, err := executor.New(*s.config, logger)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfiguration, "construct executor pool")
		}
		return &executorBinding{exec: pool, owned: true}, nil
	default:
		return nil, errors.Configuration("no executor configured: supply a pool config or an existing instance")
	}
}

// close tears down the executor only when the binding owns it.
func (b *executorBinding) close() error {
	if b == nil || !b.owned {
		return nil
	}
	if closer, ok := b.exec.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
