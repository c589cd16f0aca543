package source

// Registry maps source names to their collector implementations.
type Registry struct {
	collectors map[string]Collector
	order      []string // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		collectors: make(map[string]Collector),
	}
}

// Register adds a collector to the registry.
func (r *Registry) Register(c Collector) {
	name := c.Name()
	r.collectors[name] = c
	r.order = append(r.order, name)
}

// Get returns a collector by name, or nil when not registered.
func (r *Registry) Get(name string) Collector {
	return r.collectors[name]
}

// Select resolves a source allow-list into collectors, preserving the request
// order. Names with no registered collector are returned separately so the
// orchestrator can record them as failed outcomes rather than dropping them.
func (r *Registry) Select(names []string) (selected []Collector, unknown []string) {
	for _, name := range names {
		if c, ok := r.collectors[name]; ok {
			selected = append(selected, c)
		} else {
			unknown = append(unknown, name)
		}
	}
	return selected, unknown
}

// AllNames returns registered source names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
