// Package reaction converts filesystem events into shell command batches and
// submits them to a pooled process executor.
//
// A Reactor owns two composable command-production strategies: a list of
// mustache command templates and a user-supplied generator function. On each
// event, template output comes first (in configuration order), then generator
// output, and the combined batch is submitted to the executor as one ordered
// unit.
package reaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shellhookapp/shellhook-server/internal/errors"
	"github.com/shellhookapp/shellhook-server/internal/id"
)

// ErrorSink receives failures the reactor reports out-of-band. It is injected
// by the owner alongside the logger; neither is an ambient global.
type ErrorSink func(msg string, err error)

// Options configures a Reactor.
type Options struct {
	// PluginID identifies this reactor. Generated when empty.
	PluginID string

	// ReactorID identifies the owning pipeline. Optional.
	ReactorID string

	// CommandTemplates are mustache templates rendered against each event,
	// in order. See Renderer for the template namespace.
	CommandTemplates []string

	// CommandGenerator produces additional commands programmatically. Its
	// output is appended after all rendered templates.
	CommandGenerator GeneratorFunc

	// Executor selects the pooled process collaborator: an owned pool built
	// from config, or a borrowed pre-existing instance.
	Executor ExecutorSource

	// Logger receives structured reaction logs. Defaults to a discard logger.
	Logger *slog.Logger

	// OnError receives every reported failure in addition to the log.
	OnError ErrorSink

	// OnReady is invoked once, after construction-time validation finishes,
	// regardless of which command sources are configured.
	OnReady func(pluginID string)
}

// Reactor is the reaction pipeline for one configuration. Its configuration
// is immutable after construction; React may be called concurrently.
type Reactor struct {
	pluginID  string
	reactorID string

	templates []string
	generator GeneratorFunc
	producers []commandProducer

	binding   *executorBinding
	configErr error

	logger  *slog.Logger
	onError ErrorSink
}

// New constructs a Reactor and validates its configuration. Construction
// never fails hard: configuration problems are reported through the logger
// and the error sink, and the reactor comes up degraded (React then returns
// failed Results). This keeps one misconfigured reactor from taking down the
// owning process.
func New(opts Options) *Reactor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Reactor{
		reactorID: opts.ReactorID,
		templates: opts.CommandTemplates,
		generator: opts.CommandGenerator,
		logger:    logger,
		onError:   opts.OnError,
	}

	r.pluginID = opts.PluginID
	if r.pluginID == "" {
		generated, err := id.Generate(id.PrefixReactor)
		if err != nil {
			generated = id.PrefixReactor + "-unidentified"
			r.report("generate plugin ID", err)
		}
		r.pluginID = generated
	}
	r.logger = r.logger.With("plugin_id", r.pluginID)

	if len(r.templates) > 0 {
		r.producers = append(r.producers, &templateProducer{templates: r.templates})
	}
	if r.generator != nil {
		r.producers = append(r.producers, &generatorProducer{fn: r.generator})
	}
	if len(r.producers) == 0 {
		r.configErr = errors.Configuration("neither command templates nor a command generator configured")
		r.report("invalid reactor configuration", r.configErr)
	}

	binding, err := opts.Executor.resolve(r.logger)
	if err != nil {
		r.configErr = err
		r.report("invalid executor configuration", err)
	} else {
		r.binding = binding
	}

	r.validate()

	if opts.OnReady != nil {
		opts.OnReady(r.pluginID)
	}

	return r
}

// ID returns the stable identifier the owning pipeline routes events with.
func (r *Reactor) ID() string {
	return r.pluginID
}

// Templates returns the configured command templates, in order.
func (r *Reactor) Templates() []string {
	out := make([]string, len(r.templates))
	copy(out, r.templates)
	return out
}

// HasGenerator reports whether a command generator is configured.
func (r *Reactor) HasGenerator() bool {
	return r.generator != nil
}

// React converts one event into a command batch and submits it to the
// executor. It never panics and always returns a fully populated Result;
// all failures surface through Result.Err.
func (r *Reactor) React(ctx context.Context, event Event) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = r.fail(event, "reaction panicked",
				errors.Internalf("reaction panicked: %v", rec))
		}
	}()

	if r.binding == nil {
		err := r.configErr
		if err == nil {
			err = errors.Configuration("reactor has no executor")
		}
		return r.fail(event, "reactor is not executable", err)
	}

	if len(r.producers) == 0 {
		r.logger.Warn("reacting with no configured command sources",
			"event_type", event.Type.String(),
			"path", event.FullPath,
		)
	}

	// Production order is fixed: all templates first, then the generator.
	// The first failure aborts the reaction with nothing submitted.
	var commands []string
	for _, producer := range r.producers {
		out, err := producer.produce(event)
		if err != nil {
			return r.fail(event, "command production failed", err)
		}
		commands = append(commands, out...)
	}

	// An all-empty batch is still submitted; the executor treats it as a
	// no-op that trivially succeeds.
	if _, err := r.binding.exec.ExecuteCommands(ctx, commands); err != nil {
		var domainErr *errors.Error
		if !errors.As(err, &domainErr) {
			err = errors.Wrap(err, errors.CodeExecution, "execute command batch")
		}
		return r.fail(event, "command batch execution failed", err)
	}

	r.logger.Debug("reaction complete",
		"event_type", event.Type.String(),
		"path", event.FullPath,
		"commands", len(commands),
	)

	return Result{
		Success:   true,
		PluginID:  r.pluginID,
		ReactorID: r.reactorID,
		Event:     event,
		Message:   fmt.Sprintf("executed %d command(s) for %s %s", len(commands), event.Type, event.FullPath),
	}
}

// Close tears down the executor when the reactor owns it. Borrowed executor
// instances are left untouched.
func (r *Reactor) Close() error {
	return r.binding.close()
}

// validate dry-runs every configured command source against a synthetic probe
// event to surface configuration mistakes early. Each template is probed
// individually. Failures are reported at high severity but are not fatal.
func (r *Reactor) validate() {
	probe := newProbeEvent()

	var renderer Renderer
	for _, tmpl := range r.templates {
		if _, err := renderer.Render(tmpl, probe); err != nil {
			r.report("template failed probe validation", err)
		}
	}

	if r.generator != nil {
		gp := &generatorProducer{fn: r.generator}
		if _, err := gp.produce(probe); err != nil {
			r.report("generator failed probe validation", err)
		}
	}
}

// fail builds a failed Result and reports it through both channels.
func (r *Reactor) fail(event Event, msg string, err error) Result {
	r.report(msg, err)
	return Result{
		Success:   false,
		PluginID:  r.pluginID,
		ReactorID: r.reactorID,
		Event:     event,
		Message:   msg,
		Err:       err,
	}
}

// report sends a failure to the structured log and the error sink.
func (r *Reactor) report(msg string, err error) {
	r.logger.Error(msg, "error", err)
	if r.onError != nil {
		r.onError(msg, err)
	}
}
