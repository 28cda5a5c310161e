// Package route names processor graphs and tracks them for the hosting
// service and the management API.
package route

import (
	"fmt"
	"sync"

	"drover/internal/processor"
)

// Route binds an identifier to the entry processor of a graph.
type Route struct {
	ID    string
	Entry processor.Processor

	// Steps is a human-readable summary of the graph, in declaration
	// order, for the management API.
	Steps []string
}

// Info is the management view of a route.
type Info struct {
	ID    string   `json:"id"`
	Steps []string `json:"steps,omitempty"`
}

type Registry struct {
	mu     sync.RWMutex
	routes map[string]*Route
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]*Route)}
}

func (r *Registry) Add(route *Route) error {
	if route.ID == "" {
		return fmt.Errorf("route id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.routes[route.ID]; exists {
		return fmt.Errorf("route %q already registered", route.ID)
	}
	r.routes[route.ID] = route
	r.order = append(r.order, route.ID)
	return nil
}

func (r *Registry) Get(id string) (*Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[id]
	return route, ok
}

// List returns route summaries in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		route := r.routes[id]
		out = append(out, Info{ID: route.ID, Steps: route.Steps})
	}
	return out
}
