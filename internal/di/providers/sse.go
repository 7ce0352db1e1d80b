package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shellhookapp/shellhook-server/internal/logger"
	"github.com/shellhookapp/shellhook-server/internal/sse"
)

// SSEManagerHandle wraps the SSE manager with Shutdownable.
type SSEManagerHandle struct {
	Manager *sse.Manager
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	h.Manager.Shutdown()
	return nil
}

// ProvideSSEManager provides the SSE broadcast manager, started in the background.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{Manager: manager, cancel: cancel}, nil
}
