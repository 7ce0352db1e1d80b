package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/shellhookapp/shellhook-server/internal/config"
	"github.com/shellhookapp/shellhook-server/internal/logger"
	"github.com/shellhookapp/shellhook-server/internal/server"
	"github.com/shellhookapp/shellhook-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable. The server is nil
// when the status surface is disabled.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	if h.Server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the status HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Server.Enabled {
		log.Info("Status server disabled by configuration")
		return &HTTPServerHandle{}, nil
	}

	set := do.MustInvoke[*ReactorSet](i)
	shared := do.MustInvoke[*SharedExecutorHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)
	handler := server.NewServer(set.Reactors, shared.Pool, sseHandler, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Status server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Status server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
