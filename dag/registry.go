package dag

import (
	"sort"
	"sync"

	"github.com/kbukum/sitekit/errors"
)

// Registry provides named node lookup for dynamic graph construction.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Node
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]Node)}
}

// Register adds a node under its name. Registering a name twice is a
// configuration error.
func (r *Registry) Register(node Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := node.Name()
	if name == "" {
		return errors.Configuration("node name must not be empty")
	}
	if _, exists := r.nodes[name]; exists {
		return errors.Configuration("duplicate name %q", name)
	}
	r.nodes[name] = node
	return nil
}

// Get retrieves a node by name.
func (r *Registry) Get(name string) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[name]
	return n, ok
}

// List returns sorted names of all registered nodes.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Graph builds a Graph of every registered node using deps to derive edges.
func (r *Registry) Graph(deps func(name string) []string) *Graph {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g := &Graph{Nodes: make(map[string]Node, len(r.nodes))}
	for name, node := range r.nodes {
		g.Nodes[name] = node
	}
	for _, name := range sortedKeys(g.Nodes) {
		for _, dep := range deps(name) {
			g.Edges = append(g.Edges, Edge{From: dep, To: name})
		}
	}
	return g
}

func sortedKeys(m map[string]Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
