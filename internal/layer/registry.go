package layer

import "fmt"

// Registry is the ordered set of thematic layers shown on the map.
// It is filled at startup and only read afterwards.
type Registry struct {
	byName map[string]*ThematicLayer
	order  []*ThematicLayer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*ThematicLayer)}
}

// Add registers a layer. Layer names are unique.
func (r *Registry) Add(l *ThematicLayer) error {
	if _, ok := r.byName[l.Name()]; ok {
		return fmt.Errorf("duplicate layer %q", l.Name())
	}

	r.byName[l.Name()] = l
	r.order = append(r.order, l)
	return nil
}

// Get returns the layer with the given name.
func (r *Registry) Get(name string) (*ThematicLayer, bool) {
	l, ok := r.byName[name]
	return l, ok
}

// Layers returns the layers in registration order.
func (r *Registry) Layers() []*ThematicLayer {
	return r.order
}

// Statuses returns a status snapshot of every layer in registration order.
func (r *Registry) Statuses() []Status {
	out := make([]Status, 0, len(r.order))
	for _, l := range r.order {
		out = append(out, l.Status())
	}
	return out
}
