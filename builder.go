package patch

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/modular-dsp/patch/graph"
)

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// Node is a handle to a module added to a builder.
type Node struct {
	id      graph.NodeID
	sockets Sockets
}

// In addresses input socket i of the given type on this node.
func (n Node) In(typ SocketType, i int) InPort {
	return InPort{node: n.id, typ: typ, index: i}
}

// Out addresses output socket i of the given type on this node.
func (n Node) Out(typ SocketType, i int) OutPort {
	return OutPort{node: n.id, typ: typ, index: i}
}

// InPort addresses one input socket of one node.
type InPort struct {
	node  graph.NodeID
	typ   SocketType
	index int
}

// OutPort addresses one output socket of one node.
type OutPort struct {
	node  graph.NodeID
	typ   SocketType
	index int
}

// Input is an external input terminal feeding the graph.
type Input struct {
	node graph.NodeID
	typ  SocketType
}

// Output is an external output terminal draining the graph. Compilation is
// requested for one output.
type Output struct {
	node graph.NodeID
	typ  SocketType
}

type builderNode struct {
	uid    string
	name   string
	module Module

	// terminal metadata, used when module is nil.
	terminal SocketType
	isInput  bool
}

type connection struct {
	typ      SocketType
	fromSock int
	toSock   int
}

// Builder assembles a module graph prior to compilation. Nodes are modules
// or external terminals; edges are typed socket connections. The graph is
// immutable during a compiled run; structural changes require building and
// compiling again.
type Builder struct {
	graph *graph.Attached
	adj   *graph.Adjacency
	nodes map[graph.NodeID]*builderNode
	conns map[graph.EdgeID]connection
	order []graph.NodeID
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	adj := graph.NewAdjacency()
	return &Builder{
		graph: &graph.Attached{Owning: graph.New(), Secondary: adj},
		adj:   adj,
		nodes: make(map[graph.NodeID]*builderNode),
		conns: make(map[graph.EdgeID]connection),
	}
}

// AddModule adds a module under the given name and returns its node handle.
func (b *Builder) AddModule(name string, m Module) Node {
	id := b.graph.AddNode()
	b.nodes[id] = &builderNode{uid: newUID(), name: name, module: m}
	b.order = append(b.order, id)
	return Node{id: id, sockets: m.Sockets()}
}

// AddInput declares an external input terminal of the given socket type.
func (b *Builder) AddInput(typ SocketType) Input {
	id := b.graph.AddNode()
	b.nodes[id] = &builderNode{
		uid:      newUID(),
		name:     fmt.Sprintf("%s-input", typ),
		terminal: typ,
		isInput:  true,
	}
	b.order = append(b.order, id)
	return Input{node: id, typ: typ}
}

// AddOutput declares an external output terminal of the given socket type.
func (b *Builder) AddOutput(typ SocketType) Output {
	id := b.graph.AddNode()
	b.nodes[id] = &builderNode{
		uid:      newUID(),
		name:     fmt.Sprintf("%s-output", typ),
		terminal: typ,
	}
	b.order = append(b.order, id)
	return Output{node: id, typ: typ}
}

// Connect wires a module output socket to a module input socket. Multiple
// connections into the same input are summed at runtime.
func (b *Builder) Connect(out OutPort, in InPort) (graph.EdgeID, error) {
	if out.typ != in.typ {
		return graph.EdgeID{}, fmt.Errorf("connect %s output to %s input: %w", out.typ, in.typ, ErrTypeMismatch)
	}
	if err := b.checkPort(out.node, out.typ, out.index, false); err != nil {
		return graph.EdgeID{}, err
	}
	if err := b.checkPort(in.node, in.typ, in.index, true); err != nil {
		return graph.EdgeID{}, err
	}
	return b.addConnection(out.node, in.node, connection{typ: out.typ, fromSock: out.index, toSock: in.index}), nil
}

// ConnectInput wires an external input terminal to a module input socket.
func (b *Builder) ConnectInput(in Input, port InPort) (graph.EdgeID, error) {
	if in.typ != port.typ {
		return graph.EdgeID{}, fmt.Errorf("connect %s terminal to %s input: %w", in.typ, port.typ, ErrTypeMismatch)
	}
	if err := b.checkPort(port.node, port.typ, port.index, true); err != nil {
		return graph.EdgeID{}, err
	}
	return b.addConnection(in.node, port.node, connection{typ: in.typ, toSock: port.index}), nil
}

// ConnectOutput wires a module output socket to an external output
// terminal.
func (b *Builder) ConnectOutput(port OutPort, out Output) (graph.EdgeID, error) {
	if port.typ != out.typ {
		return graph.EdgeID{}, fmt.Errorf("connect %s output to %s terminal: %w", port.typ, out.typ, ErrTypeMismatch)
	}
	if err := b.checkPort(port.node, port.typ, port.index, false); err != nil {
		return graph.EdgeID{}, err
	}
	return b.addConnection(port.node, out.node, connection{typ: port.typ, fromSock: port.index}), nil
}

func (b *Builder) addConnection(from, to graph.NodeID, c connection) graph.EdgeID {
	id := b.graph.AddEdge(from, to)
	b.conns[id] = c
	return id
}

func (b *Builder) checkPort(node graph.NodeID, typ SocketType, index int, input bool) error {
	n, ok := b.nodes[node]
	if !ok || n.module == nil {
		return fmt.Errorf("unknown module node %v", node)
	}
	counts := n.module.Sockets().Outputs
	side := "output"
	if input {
		counts = n.module.Sockets().Inputs
		side = "input"
	}
	if index < 0 || index >= counts[typ] {
		return fmt.Errorf("module %s has no %s %s %d", n.name, typ, side, index)
	}
	return nil
}
