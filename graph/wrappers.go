package graph

// Reversed swaps the direction of every edge of the inner graph without
// materializing new storage.
type Reversed struct {
	Inner Graph
}

// Edge returns the inner edge with its endpoints swapped.
func (r Reversed) Edge(id EdgeID) (Edge, bool) {
	e, ok := r.Inner.Edge(id)
	if !ok {
		return Edge{}, false
	}
	return Edge{From: e.To, To: e.From}, true
}

// Nodes returns the inner graph's nodes.
func (r Reversed) Nodes() []NodeID {
	return r.Inner.Nodes()
}

// Edges returns the inner graph's edges.
func (r Reversed) Edges() []EdgeID {
	return r.Inner.Edges()
}

// Incoming returns the inner graph's outgoing edges for the node.
func (r Reversed) Incoming(node NodeID) []EdgeID {
	return Outgoing(r.Inner, node)
}

// Outgoing returns the inner graph's incoming edges for the node.
func (r Reversed) Outgoing(node NodeID) []EdgeID {
	return Incoming(r.Inner, node)
}

// Attached keeps an owning graph and a secondary graph in sync. All ids are
// generated by the owning graph, which is also the source of truth for
// queries. This is also a way to augment any Secondary into an Owned graph.
type Attached struct {
	Owning    Owned
	Secondary Secondary
}

// AddNode adds a node to both graphs and returns the generated id.
func (a *Attached) AddNode() NodeID {
	id := a.Owning.AddNode()
	a.Secondary.PutNode(id)
	return id
}

// AddEdge adds an edge to both graphs and returns the generated id.
func (a *Attached) AddEdge(from, to NodeID) EdgeID {
	id := a.Owning.AddEdge(from, to)
	a.Secondary.PutEdge(id, Edge{From: from, To: to})
	return id
}

// Edge returns the edge data for this id, if it exists.
func (a *Attached) Edge(id EdgeID) (Edge, bool) {
	return a.Owning.Edge(id)
}

// Nodes returns the owning graph's nodes.
func (a *Attached) Nodes() []NodeID {
	return a.Owning.Nodes()
}

// Edges returns the owning graph's edges.
func (a *Attached) Edges() []EdgeID {
	return a.Owning.Edges()
}
