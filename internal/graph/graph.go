// Package graph provides the directed relationship graph used by source
// resolution.
//
// Nodes are source ids. Edges are directed, unweighted and deduplicated;
// a node may have many outgoing edges. Neighbour lists preserve insertion
// order so resolution is deterministic for a given batch order.
//
// The graph holds no invariants beyond that. Cycle detection is the
// caller's job.
package graph

import "slices"

// node holds the adjacency lists for one id.
type node struct {
	out []string
	in  []string
}

// Graph is a directed graph over string ids.
// Not safe for concurrent mutation; each resolution run owns its graphs.
type Graph struct {
	name  string
	nodes map[string]*node
	order []string // Node insertion order
}

// New creates an empty graph. The name only appears in diagnostics.
func New(name string) *Graph {
	return &Graph{
		name:  name,
		nodes: make(map[string]*node),
	}
}

// Name returns the diagnostic name given to New.
func (g *Graph) Name() string {
	return g.name
}

// AddNode ensures id is known, even with no edges. Idempotent.
func (g *Graph) AddNode(id string) {
	g.ensure(id)
}

func (g *Graph) ensure(id string) *node {
	n, ok := g.nodes[id]
	if !ok {
		n = &node{}
		g.nodes[id] = n
		g.order = append(g.order, id)
	}
	return n
}

// Connect adds the edge from -> to, creating both endpoints as needed.
// Connecting an existing edge is a no-op.
func (g *Graph) Connect(from, to string) {
	src := g.ensure(from)
	dst := g.ensure(to)
	if slices.Contains(src.out, to) {
		return
	}
	src.out = append(src.out, to)
	dst.in = append(dst.in, from)
}

// Outgoing returns the targets of id's edges in insertion order.
// Unknown ids and ids without edges yield an empty slice.
func (g *Graph) Outgoing(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return []string{}
	}
	return append([]string{}, n.out...)
}

// Incoming returns the sources of edges into id in insertion order.
// Like Outgoing, the result is never nil.
func (g *Graph) Incoming(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return []string{}
	}
	return append([]string{}, n.in...)
}

// First returns the first outgoing neighbour of id.
func (g *Graph) First(id string) (string, bool) {
	n, ok := g.nodes[id]
	if !ok || len(n.out) == 0 {
		return "", false
	}
	return n.out[0], true
}

// FirstIncoming returns the first incoming neighbour of id.
func (g *Graph) FirstIncoming(id string) (string, bool) {
	n, ok := g.nodes[id]
	if !ok || len(n.in) == 0 {
		return "", false
	}
	return n.in[0], true
}

// Nodes returns all node ids in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string{}, g.order...)
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.out)
	}
	return count
}

// Reroute merges id into newTarget: every edge that pointed into id now
// points into newTarget, and id is removed together with its outgoing
// edges. Rerouting an unknown id, or an id onto itself, does nothing.
func (g *Graph) Reroute(id, newTarget string) {
	n, ok := g.nodes[id]
	if !ok || id == newTarget {
		return
	}

	for _, to := range n.out {
		if dst, ok := g.nodes[to]; ok {
			dst.in = slices.DeleteFunc(dst.in, func(s string) bool { return s == id })
		}
	}

	incoming := n.in
	for _, from := range incoming {
		if src, ok := g.nodes[from]; ok {
			src.out = slices.DeleteFunc(src.out, func(s string) bool { return s == id })
		}
	}

	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })

	for _, from := range incoming {
		if from == id {
			continue
		}
		g.Connect(from, newTarget)
	}
}
