package dag

import (
	"sort"

	"github.com/kbukum/sitekit/errors"
)

// Graph declares nodes and edges (dependency relationships).
type Graph struct {
	Nodes map[string]Node
	Edges []Edge
}

// Edge represents a dependency: To depends on From.
type Edge struct {
	From string
	To   string
}

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Nodes within the same level can execute in parallel; names inside a level
// are sorted so the plan is reproducible.
// Returns a configuration error on a cycle or an edge to an unknown node.
func BuildLevels(g *Graph) ([][]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	dependents := make(map[string][]string) // from -> [to...]

	for name := range g.Nodes {
		inDegree[name] = 0
	}

	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			return nil, errors.Configuration("%q depends on unknown %q", e.To, e.From)
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return nil, errors.Configuration("edge references unknown %q", e.To)
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		sort.Strings(queue)
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}

	if visited != len(g.Nodes) {
		var stuck []string
		for name, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, errors.Configuration("dependency cycle detected among %v", stuck).
			WithDetail("processed", visited).
			WithDetail("total", len(g.Nodes))
	}

	return levels, nil
}

// Ancestors returns the named nodes together with everything they depend on,
// directly or transitively. Unknown names are a configuration error.
func Ancestors(g *Graph, names []string) (map[string]bool, error) {
	deps := make(map[string][]string)
	for _, e := range g.Edges {
		deps[e.To] = append(deps[e.To], e.From)
	}

	seen := make(map[string]bool)
	stack := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := g.Nodes[name]; !ok {
			return nil, errors.Configuration("unknown target %q", name)
		}
		stack = append(stack, name)
	}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[name] {
			continue
		}
		seen[name] = true
		stack = append(stack, deps[name]...)
	}
	return seen, nil
}
