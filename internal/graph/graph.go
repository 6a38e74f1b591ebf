// Package graph builds the finish-to-start dependency graph for one snapshot
// and answers the ordering questions the delay model needs: stable topological
// order, upstream sets, and downstream transitive closure.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"milecast/internal/fault"
	"milecast/internal/state"
)

// Graph is the immutable dependency view for one snapshot. Edges run from an
// upstream item to the items waiting on it.
type Graph struct {
	order      []string
	upstream   map[string][]string
	dependents map[string][]string
}

// Build constructs the graph from the union of implicit work-item
// dependencies and explicit dependency edges. Edges whose endpoints are not
// known work items are ignored. A cycle fails construction with a diagnostic
// listing the cycle members.
func Build(snap *state.Snapshot) (*Graph, error) {
	ids := make([]string, 0, len(snap.WorkItems))
	for id := range snap.WorkItems {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Node ids are assigned in sorted work-item-id order so that gonum's
	// stabilized sort breaks ties lexicographically.
	index := make(map[string]int64, len(ids))
	for i, id := range ids {
		index[id] = int64(i)
	}

	type edge struct{ up, down string }
	seen := make(map[edge]bool)
	var edges []edge

	addEdge := func(up, down string) {
		if up == down {
			return
		}
		if _, ok := index[up]; !ok {
			return
		}
		if _, ok := index[down]; !ok {
			return
		}
		e := edge{up, down}
		if !seen[e] {
			seen[e] = true
			edges = append(edges, e)
		}
	}

	for _, id := range ids {
		for _, dep := range snap.WorkItems[id].DependsOn {
			addEdge(dep, id)
		}
	}
	depIDs := make([]string, 0, len(snap.Dependencies))
	for id := range snap.Dependencies {
		depIDs = append(depIDs, id)
	}
	sort.Strings(depIDs)
	for _, id := range depIDs {
		d := snap.Dependencies[id]
		// from cannot finish until to does: to is upstream of from.
		addEdge(d.ToID, d.FromID)
	}

	dg := simple.NewDirectedGraph()
	for _, id := range ids {
		dg.AddNode(simple.Node(index[id]))
	}
	for _, e := range edges {
		dg.SetEdge(dg.NewEdge(simple.Node(index[e.up]), simple.Node(index[e.down])))
	}

	sorted, err := topo.SortStabilized(dg, nil)
	if err != nil {
		var unorderable topo.Unorderable
		if errors.As(err, &unorderable) {
			return nil, cycleError(unorderable, ids)
		}
		return nil, fmt.Errorf("%w: %v", fault.ErrInvalidGraph, err)
	}

	g := &Graph{
		order:      make([]string, 0, len(ids)),
		upstream:   make(map[string][]string, len(ids)),
		dependents: make(map[string][]string, len(ids)),
	}
	for _, n := range sorted {
		g.order = append(g.order, ids[n.ID()])
	}
	for _, e := range edges {
		g.upstream[e.down] = append(g.upstream[e.down], e.up)
		g.dependents[e.up] = append(g.dependents[e.up], e.down)
	}
	for id := range g.upstream {
		sort.Strings(g.upstream[id])
	}
	for id := range g.dependents {
		sort.Strings(g.dependents[id])
	}

	return g, nil
}

// TopoOrder returns all work item ids, upstream items first. Ties are broken
// by lexicographic id, so the order is stable across calls.
func (g *Graph) TopoOrder() []string {
	return g.order
}

// Upstream returns the ids the given item directly waits on, sorted.
func (g *Graph) Upstream(id string) []string {
	return g.upstream[id]
}

// Dependents returns the ids directly waiting on the given item, sorted.
func (g *Graph) Dependents(id string) []string {
	return g.dependents[id]
}

// DownstreamClosure returns every item transitively waiting on the given
// item, sorted. A scenario perturbing item X can only touch milestones whose
// items appear in this set (or X itself).
func (g *Graph) DownstreamClosure(id string) []string {
	visited := make(map[string]bool)
	stack := append([]string{}, g.dependents[id]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, g.dependents[n]...)
	}
	out := make([]string, 0, len(visited))
	for n := range visited {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func cycleError(unorderable topo.Unorderable, ids []string) error {
	var members []string
	for _, component := range unorderable {
		var cycle []string
		for _, n := range component {
			cycle = append(cycle, ids[n.ID()])
		}
		sort.Strings(cycle)
		members = append(members, strings.Join(cycle, " -> "))
	}
	return fmt.Errorf("%w: dependency cycle detected: %s", fault.ErrInvalidGraph, strings.Join(members, "; "))
}
