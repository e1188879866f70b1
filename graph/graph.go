// Package graph implements directed graph datastructures and the algorithms
// working on them. Graphs only track opaque node and edge ids; it is the
// responsibility of the caller to store their own data and provide it to
// algorithms via callbacks (i.e. weight for shortest path algorithms).
package graph

import "fmt"

type (
	// NodeID is an opaque, generationally-stable node identifier. The zero
	// value never names a live node.
	NodeID struct {
		index      uint32
		generation uint32
	}

	// EdgeID is an opaque, generationally-stable edge identifier. The zero
	// value never names a live edge.
	EdgeID struct {
		index      uint32
		generation uint32
	}

	// Edge connects two nodes together.
	Edge struct {
		From NodeID
		To   NodeID
	}

	// Graph is a read-only view over nodes and edges. Malformed ids yield
	// empty results, never errors: structural validation is the concern of
	// higher layers.
	Graph interface {
		// Edge returns the edge data for this id, if it exists.
		Edge(id EdgeID) (Edge, bool)
		// Nodes returns all node ids, in a deterministic order.
		Nodes() []NodeID
		// Edges returns all edge ids, in a deterministic order.
		Edges() []EdgeID
	}

	// Owned is a graph that owns its nodes and edges: it generates the ids.
	// To reuse ids generated elsewhere, use Secondary.
	Owned interface {
		Graph
		AddNode() NodeID
		AddEdge(from, to NodeID) EdgeID
	}

	// Secondary is a graph built from ids generated by another graph. It is
	// used to keep derived structures in sync with an owning graph.
	Secondary interface {
		Graph
		PutNode(id NodeID)
		PutEdge(id EdgeID, e Edge)
	}
)

func (id NodeID) String() string {
	return fmt.Sprintf("node(%d.%d)", id.index, id.generation)
}

func (id EdgeID) String() string {
	return fmt.Sprintf("edge(%d.%d)", id.index, id.generation)
}

// adjacent is implemented by graphs that answer incoming/outgoing queries
// without scanning all edges.
type adjacent interface {
	Incoming(node NodeID) []EdgeID
	Outgoing(node NodeID) []EdgeID
}

// HasNode returns true if the node exists in the graph.
func HasNode(g Graph, node NodeID) bool {
	for _, id := range g.Nodes() {
		if id == node {
			return true
		}
	}
	return false
}

// HasEdge returns true if an edge with this id exists in the graph.
func HasEdge(g Graph, id EdgeID) bool {
	_, ok := g.Edge(id)
	return ok
}

// NumNodes returns the total number of nodes in the graph.
func NumNodes(g Graph) int {
	return len(g.Nodes())
}

// NumEdges returns the total number of edges in the graph.
func NumEdges(g Graph) int {
	return len(g.Edges())
}

// HasEdgeBetween returns true if the nodes are directly connected.
func HasEdgeBetween(g Graph, from, to NodeID) bool {
	for _, id := range Outgoing(g, from) {
		if e, ok := g.Edge(id); ok && e.To == to {
			return true
		}
	}
	return false
}

// EdgesBetween returns all edges from one node to another. Parallel edges
// are permitted, so the result may hold more than one id.
func EdgesBetween(g Graph, from, to NodeID) []EdgeID {
	var ids []EdgeID
	for _, id := range Outgoing(g, from) {
		if e, ok := g.Edge(id); ok && e.To == to {
			ids = append(ids, id)
		}
	}
	return ids
}

// Incoming returns all edges that terminate at the node.
func Incoming(g Graph, node NodeID) []EdgeID {
	if a, ok := g.(adjacent); ok {
		return a.Incoming(node)
	}
	var ids []EdgeID
	for _, id := range g.Edges() {
		if e, ok := g.Edge(id); ok && e.To == node {
			ids = append(ids, id)
		}
	}
	return ids
}

// Outgoing returns all edges that originate from the node.
func Outgoing(g Graph, node NodeID) []EdgeID {
	if a, ok := g.(adjacent); ok {
		return a.Outgoing(node)
	}
	var ids []EdgeID
	for _, id := range g.Edges() {
		if e, ok := g.Edge(id); ok && e.From == node {
			ids = append(ids, id)
		}
	}
	return ids
}

// Neighbors returns all unique nodes directly connected to the node, either
// as the source or the target of an edge.
func Neighbors(g Graph, node NodeID) []NodeID {
	seen := make(map[NodeID]struct{})
	var nodes []NodeID
	add := func(n NodeID) {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			nodes = append(nodes, n)
		}
	}
	for _, id := range Outgoing(g, node) {
		if e, ok := g.Edge(id); ok {
			add(e.To)
		}
	}
	for _, id := range Incoming(g, node) {
		if e, ok := g.Edge(id); ok {
			add(e.From)
		}
	}
	return nodes
}
