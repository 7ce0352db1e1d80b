package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ReactionsFile is the parsed reactions definition file. It declares what to
// watch, the shared executor pool, and the reactors fed by the watcher.
type ReactionsFile struct {
	// WatchPaths are the filesystem roots to monitor.
	WatchPaths []string `json:"watch_paths" validate:"required,min=1,dive,required"`

	// IgnorePatterns are glob patterns of basenames to skip. Optional.
	IgnorePatterns []string `json:"ignore_patterns"`

	// SettleDelay is how long a file must stop changing before an event is
	// emitted (e.g. "250ms"). Optional.
	SettleDelay string `json:"settle_delay" validate:"omitempty"`

	// Executor configures the shared executor pool borrowed by reactors
	// that don't declare their own.
	Executor ExecutorConfig `json:"executor"`

	// Reactors are the reaction definitions.
	Reactors []ReactorConfig `json:"reactors" validate:"required,min=1,dive"`
}

// ExecutorConfig holds executor pool settings as they appear in the
// reactions file.
type ExecutorConfig struct {
	Command     string   `json:"command"`
	Args        []string `json:"args"`
	PoolSize    int      `json:"pool_size" validate:"omitempty,gte=1,lte=64"`
	IdleTimeout string   `json:"idle_timeout" validate:"omitempty"`
	WorkDir     string   `json:"work_dir"`
	HistorySize int      `json:"history_size" validate:"omitempty,gte=1"`
}

// ReactorConfig declares one reactor. At least one of CommandTemplates and
// Generator must be present; both may be, and both are applied.
type ReactorConfig struct {
	// ID is the reactor's plugin ID. Generated when empty.
	ID string `json:"id"`

	// CommandTemplates are mustache command templates, applied in order.
	CommandTemplates []string `json:"command_templates"`

	// Generator names a registered command generator.
	Generator string `json:"generator"`

	// Executor, when set, gives this reactor its own pool instead of
	// borrowing the shared one.
	Executor *ExecutorConfig `json:"executor,omitempty"`
}

// ParseSettleDelay returns the settle delay as a duration, or zero when unset.
func (f *ReactionsFile) ParseSettleDelay() (time.Duration, error) {
	if f.SettleDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.SettleDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid settle delay %q: %w", f.SettleDelay, err)
	}
	return d, nil
}

// ParseIdleTimeout returns the pool idle timeout as a duration, or zero when unset.
func (c *ExecutorConfig) ParseIdleTimeout() (time.Duration, error) {
	if c.IdleTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.IdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid idle timeout %q: %w", c.IdleTimeout, err)
	}
	return d, nil
}

// LoadReactions reads and parses the reactions definition file. Structural
// validation (required fields, ranges) is the caller's job, via the
// validation package.
func LoadReactions(path string) (*ReactionsFile, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- Reactions file path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read reactions file: %w", err)
	}

	var file ReactionsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse reactions file %s: %w", path, err)
	}

	// Durations are validated eagerly so mistakes surface at load time.
	if _, err := file.ParseSettleDelay(); err != nil {
		return nil, err
	}
	if _, err := file.Executor.ParseIdleTimeout(); err != nil {
		return nil, err
	}
	for i := range file.Reactors {
		rc := &file.Reactors[i]
		if len(rc.CommandTemplates) == 0 && rc.Generator == "" {
			return nil, fmt.Errorf("reactor %d: neither command_templates nor generator is set", i)
		}
		if rc.Executor != nil {
			if _, err := rc.Executor.ParseIdleTimeout(); err != nil {
				return nil, fmt.Errorf("reactor %d: %w", i, err)
			}
		}
	}

	return &file, nil
}
