package reaction

import (
	"sort"
	"sync"

	"github.com/shellhookapp/shellhook-server/internal/errors"
)

// Generators referenced by name from the reactions file are registered here.
// Registration happens at startup, before reactors are constructed.
var (
	registryMu sync.RWMutex
	registry   = map[string]GeneratorFunc{}
)

// RegisterGenerator makes a generator available under a name. Registering an
// empty name or a duplicate is an error.
func RegisterGenerator(name string, fn GeneratorFunc) error {
	if name == "" {
		return errors.Configuration("generator name must not be empty")
	}
	if fn == nil {
		return errors.Configurationf("generator %q must not be nil", name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		return errors.Configurationf("generator %q already registered", name)
	}
	registry[name] = fn
	return nil
}

// LookupGenerator resolves a registered generator by name.
func LookupGenerator(name string) (GeneratorFunc, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	fn, ok := registry[name]
	if !ok {
		return nil, errors.NotFoundf("generator %q not registered", name)
	}
	return fn, nil
}

// GeneratorNames returns the registered generator names, sorted.
func GeneratorNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
