package graph

// slot holds one arena entry together with its generation counter.
type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// arena is slot-based storage with generational ids. Removing an entry bumps
// the slot generation, so stale ids miss instead of aliasing a reused slot.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func (a *arena[T]) insert(v T) (index, generation uint32) {
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[index]
		s.value = v
		s.live = true
		a.count++
		return index, s.generation
	}
	a.slots = append(a.slots, slot[T]{value: v, generation: 1, live: true})
	a.count++
	return uint32(len(a.slots) - 1), 1
}

func (a *arena[T]) get(index, generation uint32) (T, bool) {
	var zero T
	if int(index) >= len(a.slots) {
		return zero, false
	}
	s := a.slots[index]
	if !s.live || s.generation != generation {
		return zero, false
	}
	return s.value, true
}

func (a *arena[T]) remove(index, generation uint32) bool {
	if int(index) >= len(a.slots) {
		return false
	}
	s := &a.slots[index]
	if !s.live || s.generation != generation {
		return false
	}
	var zero T
	s.value = zero
	s.live = false
	s.generation++
	a.free = append(a.free, index)
	a.count--
	return true
}

// each calls fn for every live entry in slot order.
func (a *arena[T]) each(fn func(index, generation uint32)) {
	for i := range a.slots {
		if a.slots[i].live {
			fn(uint32(i), a.slots[i].generation)
		}
	}
}

// Base is the default owned graph. Node and edge ids are generated by
// generational arenas and stay stable across removals of other entries.
type Base struct {
	nodes arena[struct{}]
	edges arena[Edge]
}

// New returns a new, empty graph.
func New() *Base {
	return &Base{}
}

// AddNode adds a new node into the graph and returns its fresh id.
func (b *Base) AddNode() NodeID {
	index, generation := b.nodes.insert(struct{}{})
	return NodeID{index: index, generation: generation}
}

// AddEdge adds a directed edge between two nodes and returns its fresh id.
func (b *Base) AddEdge(from, to NodeID) EdgeID {
	index, generation := b.edges.insert(Edge{From: from, To: to})
	return EdgeID{index: index, generation: generation}
}

// RemoveNode removes a node and every edge touching it. Stale or unknown ids
// are a no-op.
func (b *Base) RemoveNode(id NodeID) {
	if !b.nodes.remove(id.index, id.generation) {
		return
	}
	for _, eid := range b.Edges() {
		if e, ok := b.Edge(eid); ok && (e.From == id || e.To == id) {
			b.edges.remove(eid.index, eid.generation)
		}
	}
}

// RemoveEdge removes an edge. Stale or unknown ids are a no-op.
func (b *Base) RemoveEdge(id EdgeID) {
	b.edges.remove(id.index, id.generation)
}

// Edge returns the edge data for this id, if it exists.
func (b *Base) Edge(id EdgeID) (Edge, bool) {
	return b.edges.get(id.index, id.generation)
}

// Nodes returns all node ids in slot order.
func (b *Base) Nodes() []NodeID {
	ids := make([]NodeID, 0, b.nodes.count)
	b.nodes.each(func(index, generation uint32) {
		ids = append(ids, NodeID{index: index, generation: generation})
	})
	return ids
}

// Edges returns all edge ids in slot order.
func (b *Base) Edges() []EdgeID {
	ids := make([]EdgeID, 0, b.edges.count)
	b.edges.each(func(index, generation uint32) {
		ids = append(ids, EdgeID{index: index, generation: generation})
	})
	return ids
}

// HasNode returns true if the node exists in the graph.
func (b *Base) HasNode(id NodeID) bool {
	_, ok := b.nodes.get(id.index, id.generation)
	return ok
}
