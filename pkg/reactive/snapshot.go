package reactive

import (
	"slices"
)

// Graph is a point-in-time view of a Runtime's nodes and edges.
type Graph struct {
	Runtime string         `json:"runtime"`
	Active  Handle         `json:"active,omitempty"`
	Nodes   []NodeSnapshot `json:"nodes"`
}

// NodeSnapshot describes one node of a Graph.
type NodeSnapshot struct {
	Handle  Handle   `json:"handle"`
	Kind    Kind     `json:"kind"`
	Name    string   `json:"name,omitempty"`
	Owner   Handle   `json:"owner,omitempty"`
	Subs    []Handle `json:"subs,omitempty"`
	Deps    []Handle `json:"deps,omitempty"`
	Dirty   bool     `json:"dirty,omitempty"`
	Running bool     `json:"running,omitempty"`
}

// Snapshot copies the current graph. Nodes are ordered by handle.
func (rt *Runtime) Snapshot() Graph {
	g := Graph{
		Runtime: rt.id,
		Active:  rt.active,
		Nodes:   make([]NodeSnapshot, 0, len(rt.nodes)),
	}
	for h, n := range rt.nodes {
		ns := NodeSnapshot{
			Handle: h,
			Kind:   n.kind,
			Name:   n.name,
			Owner:  n.owner,
			Subs:   slices.Clone(n.subs),
			Deps:   slices.Clone(n.deps),
		}
		if n.state != nil {
			ns.Dirty, ns.Running = n.state()
		}
		g.Nodes = append(g.Nodes, ns)
	}
	slices.SortFunc(g.Nodes, func(a, b NodeSnapshot) int {
		switch {
		case a.Handle < b.Handle:
			return -1
		case a.Handle > b.Handle:
			return 1
		}
		return 0
	})
	return g
}

// Node returns the snapshot of h, if it is still in the graph.
func (g Graph) Node(h Handle) (NodeSnapshot, bool) {
	for _, n := range g.Nodes {
		if n.Handle == h {
			return n, true
		}
	}
	return NodeSnapshot{}, false
}

// Lookup returns the first node with the given name.
func (g Graph) Lookup(name string) (NodeSnapshot, bool) {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeSnapshot{}, false
}
