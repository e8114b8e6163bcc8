package catalog

// Registry looks resources up by entity name.
type Registry struct {
	order []string
	items map[string]Resource
}

// NewRegistry keeps resources in the given order.
func NewRegistry(resources ...Resource) *Registry {
	r := &Registry{items: make(map[string]Resource, len(resources))}
	for _, res := range resources {
		if _, ok := r.items[res.Name()]; !ok {
			r.order = append(r.order, res.Name())
		}
		r.items[res.Name()] = res
	}
	return r
}

// Lookup returns the resource for name.
func (r *Registry) Lookup(name string) (Resource, bool) {
	res, ok := r.items[name]
	return res, ok
}

// Names lists entity names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
