// Package di provides dependency injection configuration for the shellhook server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shellhookapp/shellhook-server/internal/config"
	"github.com/shellhookapp/shellhook-server/internal/di/providers"
	"github.com/shellhookapp/shellhook-server/internal/logger"
	"github.com/shellhookapp/shellhook-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideReactions)

	// Reaction pipeline
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideSharedExecutor)
	do.Provide(injector, providers.ProvideReactors)
	do.Provide(injector, providers.ProvideFileWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*config.ReactionsFile](injector)

	// Reaction pipeline
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.SharedExecutorHandle](injector)
	_ = do.MustInvoke[*providers.ReactorSet](injector)
	_ = do.MustInvoke[*providers.FileWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
