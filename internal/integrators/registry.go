package integrators

import (
	"sort"

	"github.com/san-kum/physlab/internal/dynamo"
)

const Default = "semi-implicit-euler"

var registry = map[string]func() dynamo.Integrator{
	"semi-implicit-euler": func() dynamo.Integrator { return NewSemiImplicitEuler() },
	"euler":               func() dynamo.Integrator { return NewExplicitEuler() },
	"verlet":              func() dynamo.Integrator { return NewVerlet() },
}

// New returns the integrator registered under name. The empty name selects
// Default.
func New(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = Default
	}
	f, ok := registry[name]
	if !ok {
		return nil, dynamo.Invalid("integrator", name, "unknown integrator")
	}
	return f(), nil
}

func List() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
