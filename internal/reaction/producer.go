package reaction

import (
	"strings"

	"github.com/shellhookapp/shellhook-server/internal/errors"
)

// GeneratorFunc produces zero or more command strings for an event. It is
// supplied by the user; the pipeline imposes no contract on it beyond
// "returns commands or fails".
type GeneratorFunc func(Event) ([]string, error)

// commandProducer is one command-production strategy. Producers are evaluated
// in registration order and their outputs concatenated; the first failure
// aborts the reaction.
type commandProducer interface {
	produce(Event) ([]string, error)
}

// templateProducer renders configured templates in order. A template that
// renders to empty output contributes no command; that is not an error.
type templateProducer struct {
	renderer  Renderer
	templates []string
}

func (p *templateProducer) produce(event Event) ([]string, error) {
	commands := make([]string, 0, len(p.templates))
	for _, tmpl := range p.templates {
		out, err := p.renderer.Render(tmpl, event)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(out) == "" {
			continue
		}
		commands = append(commands, out)
	}
	return commands, nil
}

// generatorProducer invokes the user-supplied generator. Panics inside the
// generator are recovered and surfaced as generation errors so a reaction
// never crashes the caller.
type generatorProducer struct {
	fn GeneratorFunc
}

func (p *generatorProducer) produce(event Event) (commands []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			commands = nil
			err = errors.Generationf("command generator panicked: %v", r)
		}
	}()

	commands, err = p.fn(event)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeGeneration, "command generator failed")
	}
	return commands, nil
}
