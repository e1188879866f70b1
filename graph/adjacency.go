package graph

type (
	// Adjacency is a secondary graph keeping per-node adjacency lists. It
	// reuses ids generated by another graph and answers incoming/outgoing
	// queries without scanning all edges.
	Adjacency struct {
		nodes    map[NodeID]struct{}
		edges    map[EdgeID]Edge
		order    ids
		incoming map[NodeID][]EdgeID
		outgoing map[NodeID][]EdgeID
	}

	// ids keeps node and edge ids in insertion order so that queries stay
	// deterministic regardless of map iteration order.
	ids struct {
		nodes []NodeID
		edges []EdgeID
	}
)

// NewAdjacency returns a new, empty adjacency list graph.
func NewAdjacency() *Adjacency {
	return &Adjacency{
		nodes:    make(map[NodeID]struct{}),
		edges:    make(map[EdgeID]Edge),
		incoming: make(map[NodeID][]EdgeID),
		outgoing: make(map[NodeID][]EdgeID),
	}
}

// FromGraph builds an adjacency list from an existing graph, reusing its
// node and edge ids.
func FromGraph(g Graph) *Adjacency {
	a := NewAdjacency()
	for _, node := range g.Nodes() {
		a.PutNode(node)
	}
	for _, id := range g.Edges() {
		if e, ok := g.Edge(id); ok {
			a.PutEdge(id, e)
		}
	}
	return a
}

// PutNode inserts a node under a caller-supplied id. Repeated puts of the
// same id are a no-op.
func (a *Adjacency) PutNode(id NodeID) {
	if _, ok := a.nodes[id]; ok {
		return
	}
	a.nodes[id] = struct{}{}
	a.order.nodes = append(a.order.nodes, id)
}

// PutEdge inserts an edge under a caller-supplied id, updating the adjacency
// lists of both endpoints. Repeated puts of the same id are a no-op.
func (a *Adjacency) PutEdge(id EdgeID, e Edge) {
	if _, ok := a.edges[id]; ok {
		return
	}
	a.PutNode(e.From)
	a.PutNode(e.To)
	a.edges[id] = e
	a.order.edges = append(a.order.edges, id)
	a.outgoing[e.From] = append(a.outgoing[e.From], id)
	a.incoming[e.To] = append(a.incoming[e.To], id)
}

// Edge returns the edge data for this id, if it exists.
func (a *Adjacency) Edge(id EdgeID) (Edge, bool) {
	e, ok := a.edges[id]
	return e, ok
}

// Nodes returns all node ids in insertion order.
func (a *Adjacency) Nodes() []NodeID {
	return a.order.nodes
}

// Edges returns all edge ids in insertion order.
func (a *Adjacency) Edges() []EdgeID {
	return a.order.edges
}

// Incoming returns all edges that terminate at the node.
func (a *Adjacency) Incoming(node NodeID) []EdgeID {
	return a.incoming[node]
}

// Outgoing returns all edges that originate from the node.
func (a *Adjacency) Outgoing(node NodeID) []EdgeID {
	return a.outgoing[node]
}
