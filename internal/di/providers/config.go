// Package providers contains dependency injection providers for the shellhook server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/shellhookapp/shellhook-server/internal/config"
	"github.com/shellhookapp/shellhook-server/internal/logger"
	"github.com/shellhookapp/shellhook-server/internal/validation"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting shellhook server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"reactions_path", cfg.Reactions.FilePath,
	)

	return log, nil
}

// ProvideValidator provides the struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideReactions loads and validates the reactions definition file.
func ProvideReactions(i do.Injector) (*config.ReactionsFile, error) {
	cfg := do.MustInvoke[*config.Config](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	reactions, err := config.LoadReactions(cfg.Reactions.FilePath)
	if err != nil {
		return nil, err
	}

	if err := v.Validate(reactions); err != nil {
		return nil, err
	}

	log.Info("Reactions file loaded",
		"path", cfg.Reactions.FilePath,
		"watch_paths", len(reactions.WatchPaths),
		"reactors", len(reactions.Reactors),
	)

	return reactions, nil
}
