package reaction

import (
	"fmt"

	"github.com/shellhookapp/shellhook-server/internal/errors"
)

// Built-in generator names usable from the reactions file.
const (
	GeneratorEchoEvent = "echo-event"
	GeneratorNoop      = "noop"
)

// RegisterBuiltinGenerators registers the generators that ship with the
// server. Idempotent: names already registered are left as they are.
func RegisterBuiltinGenerators() error {
	builtins := map[string]GeneratorFunc{
		// echo-event prints the event type and path, mostly useful for
		// smoke-testing a reactions file.
		GeneratorEchoEvent: func(event Event) ([]string, error) {
			return []string{fmt.Sprintf("echo %s %s", event.Type, event.FullPath)}, nil
		},
		// noop produces no commands. A reactor configured with only this
		// generator submits empty batches, which exercises the executor
		// round-trip without side effects.
		GeneratorNoop: func(Event) ([]string, error) {
			return nil, nil
		},
	}

	for name, fn := range builtins {
		if _, err := LookupGenerator(name); err == nil {
			continue
		}
		if err := RegisterGenerator(name, fn); err != nil {
			return errors.Wrapf(err, errors.CodeConfiguration, "register builtin generator %s", name)
		}
	}
	return nil
}
