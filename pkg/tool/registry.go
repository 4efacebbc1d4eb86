package tool

import (
	"errors"
	"fmt"

	"github.com/kadirpekel/dealfinder/pkg/registry"
)

// ErrToolNotFound is returned by Registry.Get for unknown names.
var ErrToolNotFound = errors.New("tool not found")

// Registry holds tools in registration order. It is built once at
// start-up and read concurrently afterwards.
type Registry struct {
	*registry.BaseRegistry[Tool]
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{BaseRegistry: registry.NewBaseRegistry[Tool]()}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t under its own name.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool cannot be nil")
	}
	if err := r.BaseRegistry.Register(t.Name(), t); err != nil {
		return fmt.Errorf("failed to register tool: %w", err)
	}
	return nil
}

// Get returns the named tool or ErrToolNotFound.
func (r *Registry) Get(name string) (Tool, error) {
	t, ok := r.BaseRegistry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}

// Specs lists tool specs in registration order.
func (r *Registry) Specs() []Spec {
	tools := r.List()
	specs := make([]Spec, 0, len(tools))
	for _, t := range tools {
		specs = append(specs, SpecOf(t))
	}
	return specs
}
