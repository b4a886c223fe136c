package engine

import (
	"fmt"
	"sort"

	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/template"
)

// NotFoundError is returned by Lookup for an ecosystem without an engine.
type NotFoundError struct {
	Ecosystem template.Ecosystem
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no engine registered for ecosystem %q", e.Ecosystem)
}

// Registry maps each ecosystem to exactly one engine.
type Registry struct {
	engines map[template.Ecosystem]Engine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[template.Ecosystem]Engine)}
}

// NewDefaultRegistry registers the engine for every supported ecosystem.
func NewDefaultRegistry(r runner.Runner, opts Options) *Registry {
	opts = opts.withDefaults()
	reg := NewRegistry()
	for _, e := range []Engine{
		NewQuarkus(r, opts),
		NewSpringBoot(r, opts),
		NewAngular(r, opts),
		NewReact(r, opts),
		NewVue(r, opts),
		NewNodeJS(r, opts),
		NewDotNet(r, opts),
		NewKotlin(r, opts),
	} {
		if err := reg.Register(e); err != nil {
			panic(err)
		}
	}
	return reg
}

// Register adds e. Registering a second engine for an ecosystem fails.
func (r *Registry) Register(e Engine) error {
	eco := e.Ecosystem()
	if _, exists := r.engines[eco]; exists {
		return fmt.Errorf("engine for ecosystem %q already registered", eco)
	}
	r.engines[eco] = e
	return nil
}

// Lookup returns the engine for eco.
func (r *Registry) Lookup(eco template.Ecosystem) (Engine, error) {
	e, ok := r.engines[eco]
	if !ok {
		return nil, &NotFoundError{Ecosystem: eco}
	}
	return e, nil
}

// Supported lists the registered ecosystems in sorted order.
func (r *Registry) Supported() []template.Ecosystem {
	out := make([]template.Ecosystem, 0, len(r.engines))
	for eco := range r.engines {
		out = append(out, eco)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
