package providers

import (
	"github.com/samber/do/v2"

	"github.com/shellhookapp/shellhook-server/internal/config"
	"github.com/shellhookapp/shellhook-server/internal/executor"
	"github.com/shellhookapp/shellhook-server/internal/logger"
)

// SharedExecutorHandle wraps the shared executor pool with Shutdownable.
type SharedExecutorHandle struct {
	*executor.Pool
}

// Shutdown implements do.Shutdownable.
func (h *SharedExecutorHandle) Shutdown() error {
	return h.Pool.Close()
}

// executorConfigFromFile maps reactions-file executor settings onto pool
// configuration. Durations were validated at load time.
func executorConfigFromFile(ec config.ExecutorConfig) executor.Config {
	idle, _ := ec.ParseIdleTimeout()
	return executor.Config{
		Command:     ec.Command,
		Args:        ec.Args,
		PoolSize:    ec.PoolSize,
		IdleTimeout: idle,
		WorkDir:     ec.WorkDir,
		HistorySize: ec.HistorySize,
	}
}

// ProvideSharedExecutor provides the executor pool borrowed by reactors
// without a dedicated one.
func ProvideSharedExecutor(i do.Injector) (*SharedExecutorHandle, error) {
	reactions := do.MustInvoke[*config.ReactionsFile](i)
	log := do.MustInvoke[*logger.Logger](i)

	pool, err := executor.New(executorConfigFromFile(reactions.Executor), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Shared executor pool ready",
		"command", reactions.Executor.Command,
		"pool_size", reactions.Executor.PoolSize,
	)

	return &SharedExecutorHandle{Pool: pool}, nil
}
