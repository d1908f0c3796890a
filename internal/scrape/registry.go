package scrape

import (
	"maps"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scrape-playground/internal/model"
)

// Registry maps provider names to providers. It is built once and is
// read-only afterwards, so it is safe for concurrent use.
type Registry struct {
	order     []string
	providers map[string]Provider
	schemas   map[string]model.Schema
}

// NewRegistry registers providers in order. Duplicate names and invalid
// option schemas are rejected.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{
		providers: make(map[string]Provider, len(providers)),
		schemas:   make(map[string]model.Schema, len(providers)),
	}
	for _, p := range providers {
		name := p.Name()
		if name == "" {
			return nil, eris.New("registry: provider has empty name")
		}
		if _, dup := r.providers[name]; dup {
			return nil, eris.Errorf("registry: duplicate provider %q", name)
		}
		schema := p.OptionsSchema()
		if err := schema.Validate(); err != nil {
			return nil, eris.Wrapf(err, "registry: provider %q", name)
		}
		r.order = append(r.order, name)
		r.providers[name] = p
		r.schemas[name] = schema
	}
	return r, nil
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Get returns the named provider or ErrUnknownProvider.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, model.ErrUnknownProvider
	}
	return p, nil
}

// SchemaFor returns the option schema of the named provider.
func (r *Registry) SchemaFor(name string) (model.Schema, error) {
	s, ok := r.schemas[name]
	if !ok {
		return nil, model.ErrUnknownProvider
	}
	return s, nil
}

// Schemas returns every provider's option schema keyed by name.
func (r *Registry) Schemas() map[string]model.Schema {
	return maps.Clone(r.schemas)
}
