package dag

import (
	"github.com/pkg/errors"
)

// DFS colours.
const (
	white = iota
	grey
	black
)

// HasCycle reports whether the description contains a directed cycle.
func (g *Graph) HasCycle() bool {
	colour := make(map[string]int, len(g.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		colour[id] = grey
		for _, next := range g.Dependents(id) {
			switch colour[next] {
			case grey:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		colour[id] = black
		return false
	}

	for _, n := range g.nodes {
		if colour[n.ID] == white && visit(n.ID) {
			return true
		}
	}
	return false
}

// TopologicalOrder returns the node IDs ordered so that every node comes
// after all of its existing dependencies. Ties are broken by description
// order. A cycle yields ErrCycle.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for _, n := range g.nodes {
		for _, d := range g.Dependencies(n.ID) {
			inDegree[n.ID]++
			dependents[d] = append(dependents[d], n.ID)
		}
	}

	queue := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, errors.Wrapf(ErrCycle, "%d of %d nodes could not be ordered",
			len(g.nodes)-len(order), len(g.nodes))
	}
	return order, nil
}
