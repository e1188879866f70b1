package patch

import (
	"fmt"

	"github.com/modular-dsp/patch/event"
	"github.com/modular-dsp/patch/graph"
	"github.com/modular-dsp/patch/log"
)

// FailurePolicy decides what a runtime module failure does to the rest of
// the block.
type FailurePolicy int

const (
	// AbortBlock stops processing the block and returns the failure.
	AbortBlock FailurePolicy = iota
	// SkipModule zero-fills the failed module's outputs, logs the failure
	// and keeps processing the block.
	SkipModule
)

// Option configures a compiled schedule.
type Option func(*Schedule)

// WithLogger sets the logger used for runtime reports.
func WithLogger(l log.Logger) Option {
	return func(s *Schedule) {
		s.logger = l
	}
}

// WithFailurePolicy sets how module failures affect the block.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(s *Schedule) {
		s.policy = p
	}
}

type scheduledModule struct {
	name   string
	uid    string
	module Module
	bind   binding
	ctx    Context
	done   bool
	zeroed bool
}

// sumOp merges fan-in connections into one buffer before the consumer's
// stage runs. Source views are resolved in Prepare, once storage exists.
type sumOp struct {
	typ    SocketType
	inputs []int
	output int

	audioSrcs [][]float64
	paramSrcs []*ParamBuffer
	noteSrcs  []*NoteBuffer
}

// stage is a set of mutually independent invocations. Sums run first; they
// feed this stage's modules from earlier stages' outputs.
type stage struct {
	sums    []*sumOp
	modules []*scheduledModule
}

type terminalBinding struct {
	typ     SocketType
	index   int
	isInput bool
}

// Schedule is a compiled execution plan: a linear sequence of stages over
// shared per-socket storage. It is not safe for concurrent use; the whole
// plan runs synchronously inside one processing thread.
type Schedule struct {
	logger log.Logger
	policy FailurePolicy

	stream   StreamData
	prepared bool
	latency  float64

	store                  storage
	nAudio, nParam, nNote  int
	stages                 []stage
	modules                []*scheduledModule
	audioIn, audioOut      []int
	inputParams, inputNote []int
	clearParams, clearNote []int
	terminals              map[graph.NodeID]terminalBinding
}

type portKey struct {
	node graph.NodeID
	typ  SocketType
	sock int
}

// Compile maps the builder's graph plus the requested output onto an
// ordered sequence of execution stages. Structural errors are reported
// here, before any processing begins.
func (b *Builder) Compile(out Output, opts ...Option) (*Schedule, error) {
	outNode, ok := b.nodes[out.node]
	if !ok || outNode.module != nil || outNode.isInput {
		return nil, fmt.Errorf("compile: unknown output terminal")
	}

	reachable := b.reachableFrom(out.node)
	b.attachSinks(reachable)
	sub := b.subgraph(reachable)
	if graph.HasCycle(sub) {
		return nil, fmt.Errorf("compile: %w", graph.ErrCycleDetected)
	}

	s := &Schedule{
		logger:    log.GetLogger(),
		policy:    AbortBlock,
		terminals: make(map[graph.NodeID]terminalBinding),
	}
	for _, opt := range opts {
		opt(s)
	}

	// One buffer per produced output socket; input terminals produce one
	// buffer of their type.
	var counters SocketCount
	alloc := func(typ SocketType) int {
		i := counters[typ]
		counters[typ]++
		return i
	}
	outIndex := make(map[portKey]int)
	for _, id := range b.order {
		if !reachable[id] {
			continue
		}
		n := b.nodes[id]
		if n.module != nil {
			sockets := n.module.Sockets()
			for typ := SocketType(0); typ < numSocketTypes; typ++ {
				for k := 0; k < sockets.Outputs[typ]; k++ {
					outIndex[portKey{id, typ, k}] = alloc(typ)
				}
			}
		} else if n.isInput {
			idx := alloc(n.terminal)
			outIndex[portKey{id, n.terminal, 0}] = idx
			s.terminals[id] = terminalBinding{typ: n.terminal, index: idx, isInput: true}
			switch n.terminal {
			case Audio:
				s.audioIn = append(s.audioIn, idx)
			case Param:
				s.inputParams = append(s.inputParams, idx)
			case Note:
				s.inputNote = append(s.inputNote, idx)
			}
		}
	}

	// Bind module inputs: a single connection aliases the producer's
	// buffer, fan-in gets a dedicated buffer filled by a sum.
	producerIndices := func(id graph.NodeID, typ SocketType, sock int) []int {
		var indices []int
		for _, eid := range b.adj.Incoming(id) {
			conn := b.conns[eid]
			if conn.typ != typ || conn.toSock != sock {
				continue
			}
			e, _ := b.graph.Edge(eid)
			if !reachable[e.From] {
				continue
			}
			indices = append(indices, outIndex[portKey{e.From, typ, conn.fromSock}])
		}
		return indices
	}

	var sums []*sumOp
	sumStageNode := make(map[*sumOp]graph.NodeID)
	bindings := make(map[graph.NodeID]binding)
	for _, id := range b.order {
		n := b.nodes[id]
		if !reachable[id] || n.module == nil {
			continue
		}
		sockets := n.module.Sockets()
		var bind binding
		for typ := SocketType(0); typ < numSocketTypes; typ++ {
			bind.ins[typ] = make([]int, sockets.Inputs[typ])
			for k := range bind.ins[typ] {
				producers := producerIndices(id, typ, k)
				switch len(producers) {
				case 0:
					return nil, MissingInputError{Module: n.name, Type: typ, Socket: k}
				case 1:
					bind.ins[typ][k] = producers[0]
				default:
					idx := alloc(typ)
					bind.ins[typ][k] = idx
					op := &sumOp{typ: typ, inputs: producers, output: idx}
					sums = append(sums, op)
					sumStageNode[op] = id
				}
			}
			bind.outs[typ] = make([]int, sockets.Outputs[typ])
			for k := range bind.outs[typ] {
				bind.outs[typ][k] = outIndex[portKey{id, typ, k}]
			}
		}
		bindings[id] = bind
	}

	// Bind the requested output terminal.
	var outStorage int
	producers := producerIndices(out.node, out.typ, 0)
	switch len(producers) {
	case 0:
		return nil, MissingOutputError{Type: out.typ}
	case 1:
		outStorage = producers[0]
	default:
		outStorage = alloc(out.typ)
		op := &sumOp{typ: out.typ, inputs: producers, output: outStorage}
		sums = append(sums, op)
		sumStageNode[op] = out.node
	}
	s.terminals[out.node] = terminalBinding{typ: out.typ, index: outStorage}
	if out.typ == Audio {
		s.audioOut = append(s.audioOut, outStorage)
	}

	// Color edges so that edges sharing an endpoint differ and every edge
	// is colored strictly above all edges feeding its source. Stage order
	// is ascending color; a module runs at its smallest outgoing color.
	colors := make(map[graph.EdgeID]int)
	floors := make(map[graph.NodeID]int)
	for _, u := range topoOrder(sub) {
		for _, eid := range sub.Outgoing(u) {
			e, _ := sub.Edge(eid)
			used := make(map[int]bool)
			for _, adjEdge := range endpointEdges(sub, e) {
				if c, ok := colors[adjEdge]; ok {
					used[c] = true
				}
			}
			c := floors[u]
			for used[c] {
				c++
			}
			colors[eid] = c
			if c+1 > floors[e.To] {
				floors[e.To] = c + 1
			}
		}
	}

	nodeStage := make(map[graph.NodeID]int)
	maxColor := 0
	for _, id := range b.order {
		if !reachable[id] || b.nodes[id].module == nil {
			continue
		}
		st := -1
		for _, eid := range sub.Outgoing(id) {
			if c := colors[eid]; st < 0 || c < st {
				st = c
			}
		}
		if st < 0 {
			// Sink modules run once everything feeding them has run.
			st = floors[id]
		}
		nodeStage[id] = st
		if st > maxColor {
			maxColor = st
		}
	}
	// The output terminal itself is not an operation, but sums feeding it
	// run after every producer's stage.
	nodeStage[out.node] = floors[out.node]
	if nodeStage[out.node] > maxColor {
		maxColor = nodeStage[out.node]
	}

	staged := make([]stage, maxColor+1)
	for _, id := range b.order {
		n := b.nodes[id]
		if !reachable[id] || n.module == nil {
			continue
		}
		m := &scheduledModule{
			name:   n.name,
			uid:    n.uid,
			module: n.module,
			bind:   bindings[id],
		}
		staged[nodeStage[id]].modules = append(staged[nodeStage[id]].modules, m)
	}
	for _, op := range sums {
		st := nodeStage[sumStageNode[op]]
		staged[st].sums = append(staged[st].sums, op)
	}
	for _, st := range staged {
		if len(st.sums) == 0 && len(st.modules) == 0 {
			continue
		}
		s.stages = append(s.stages, st)
		s.modules = append(s.modules, st.modules...)
	}

	s.nAudio, s.nParam, s.nNote = counters[Audio], counters[Param], counters[Note]
	s.collectClearSets()
	return s, nil
}

// reachableFrom marks every node with a directed path to the target.
func (b *Builder) reachableFrom(target graph.NodeID) map[graph.NodeID]bool {
	reachable := map[graph.NodeID]bool{target: true}
	work := []graph.NodeID{target}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		for _, eid := range b.adj.Incoming(id) {
			e, _ := b.graph.Edge(eid)
			if !reachable[e.From] {
				reachable[e.From] = true
				work = append(work, e.From)
			}
		}
	}
	return reachable
}

// attachSinks extends the reachable set with modules that have no output
// sockets and whose every input is fed by a reachable producer. Such taps
// are not on any path to the output but still observe the compiled signal.
// A sink with an unconnected or unreachable input is left out.
func (b *Builder) attachSinks(reachable map[graph.NodeID]bool) {
	for _, id := range b.order {
		n := b.nodes[id]
		if n.module == nil || reachable[id] {
			continue
		}
		sockets := n.module.Sockets()
		if sockets.Outputs != (SocketCount{}) {
			continue
		}
		fed := true
		for typ := SocketType(0); typ < numSocketTypes && fed; typ++ {
			for k := 0; k < sockets.Inputs[typ]; k++ {
				if !b.hasReachableProducer(reachable, id, typ, k) {
					fed = false
					break
				}
			}
		}
		if fed {
			reachable[id] = true
		}
	}
}

func (b *Builder) hasReachableProducer(reachable map[graph.NodeID]bool, id graph.NodeID, typ SocketType, sock int) bool {
	for _, eid := range b.adj.Incoming(id) {
		conn := b.conns[eid]
		if conn.typ != typ || conn.toSock != sock {
			continue
		}
		e, _ := b.graph.Edge(eid)
		if reachable[e.From] {
			return true
		}
	}
	return false
}

func (b *Builder) subgraph(reachable map[graph.NodeID]bool) *graph.Adjacency {
	sub := graph.NewAdjacency()
	for _, id := range b.graph.Nodes() {
		if reachable[id] {
			sub.PutNode(id)
		}
	}
	for _, eid := range b.graph.Edges() {
		e, _ := b.graph.Edge(eid)
		if reachable[e.From] && reachable[e.To] {
			sub.PutEdge(eid, e)
		}
	}
	return sub
}

func topoOrder(g *graph.Adjacency) []graph.NodeID {
	indegree := make(map[graph.NodeID]int)
	var queue []graph.NodeID
	for _, id := range g.Nodes() {
		indegree[id] = len(g.Incoming(id))
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	order := make([]graph.NodeID, 0, len(indegree))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, eid := range g.Outgoing(id) {
			e, _ := g.Edge(eid)
			indegree[e.To]--
			if indegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}
	return order
}

// endpointEdges returns every edge sharing an endpoint with e.
func endpointEdges(g *graph.Adjacency, e graph.Edge) []graph.EdgeID {
	var edges []graph.EdgeID
	edges = append(edges, g.Incoming(e.From)...)
	edges = append(edges, g.Outgoing(e.From)...)
	edges = append(edges, g.Incoming(e.To)...)
	edges = append(edges, g.Outgoing(e.To)...)
	return edges
}

// collectClearSets records which event buffers the engine clears at block
// start (everything written during the block) and which belong to input
// terminals, cleared after the block once their events are consumed.
func (s *Schedule) collectClearSets() {
	isInput := func(set []int, idx int) bool {
		for _, i := range set {
			if i == idx {
				return true
			}
		}
		return false
	}
	for i := 0; i < s.nParam; i++ {
		if !isInput(s.inputParams, i) {
			s.clearParams = append(s.clearParams, i)
		}
	}
	for i := 0; i < s.nNote; i++ {
		if !isInput(s.inputNote, i) {
			s.clearNote = append(s.clearNote, i)
		}
	}
}

// Prepare allocates storage for the stream configuration and readies every
// scheduled module. It must be called before the first Process and again
// after every stream change.
func (s *Schedule) Prepare(sd StreamData) error {
	if sd.BufferSize <= 0 || sd.SampleRate <= 0 {
		return fmt.Errorf("prepare: invalid stream data %+v", sd)
	}
	s.prepared = false
	s.store.allocate(s.nAudio, s.nParam, s.nNote, sd.BufferSize)
	s.stream = sd
	s.latency = 0
	for _, m := range s.modules {
		if err := m.module.Prepare(sd); err != nil {
			return fmt.Errorf("prepare %s: %w", m.name, err)
		}
		if l, ok := m.module.(Latencier); ok {
			s.latency += l.Latency()
		}
		m.ctx = Context{stream: sd, store: &s.store, bind: m.bind}
		m.done = false
		m.zeroed = false
	}
	for si := range s.stages {
		for _, op := range s.stages[si].sums {
			op.resolve(&s.store)
		}
	}
	s.prepared = true
	s.logger.Debug("schedule prepared: ", len(s.modules), " modules in ", len(s.stages), " stages")
	return nil
}

func (op *sumOp) resolve(store *storage) {
	op.audioSrcs = op.audioSrcs[:0]
	op.paramSrcs = op.paramSrcs[:0]
	op.noteSrcs = op.noteSrcs[:0]
	for _, i := range op.inputs {
		switch op.typ {
		case Audio:
			op.audioSrcs = append(op.audioSrcs, store.audio[i])
		case Param:
			op.paramSrcs = append(op.paramSrcs, store.params[i])
		case Note:
			op.noteSrcs = append(op.noteSrcs, store.notes[i])
		}
	}
}

func (op *sumOp) run(store *storage) error {
	switch op.typ {
	case Audio:
		SumAudio(store.audio[op.output], op.audioSrcs...)
		return nil
	case Param:
		return event.Merge(store.params[op.output], op.paramSrcs...)
	default:
		return event.Merge(store.notes[op.output], op.noteSrcs...)
	}
}

// Process runs one block: external audio inputs are copied in, stages run
// in order, and the requested output is copied out. It returns Done once
// every scheduled module has reported Done.
func (s *Schedule) Process(in, out [][]float64) (Status, error) {
	if !s.prepared {
		return Continue, ErrNotReady
	}
	if len(in) < len(s.audioIn) {
		return Continue, fmt.Errorf("process: %d audio inputs required, got %d", len(s.audioIn), len(in))
	}
	if len(out) < len(s.audioOut) {
		return Continue, fmt.Errorf("process: %d audio outputs required, got %d", len(s.audioOut), len(out))
	}

	size := s.stream.BufferSize
	for k, idx := range s.audioIn {
		copy(s.store.audio[idx][:size], in[k])
	}
	for _, idx := range s.clearParams {
		s.store.params[idx].Clear()
	}
	for _, idx := range s.clearNote {
		s.store.notes[idx].Clear()
	}

	for si := range s.stages {
		st := &s.stages[si]
		for _, op := range st.sums {
			if err := op.run(&s.store); err != nil {
				if s.policy == AbortBlock {
					return Continue, fmt.Errorf("process sum: %w", err)
				}
				s.logger.Warn("sum overflow, output dropped: ", err)
			}
		}
		for _, m := range st.modules {
			if m.done {
				if !m.zeroed {
					s.zeroOutputs(m)
					m.zeroed = true
				}
				continue
			}
			status, err := m.module.Process(&m.ctx)
			if err != nil {
				if s.policy == AbortBlock {
					return Continue, fmt.Errorf("process %s: %w", m.name, err)
				}
				s.logger.Warn("module ", m.name, " failed, skipped: ", err)
				s.zeroOutputs(m)
				continue
			}
			if status == Done {
				m.done = true
				s.logger.Debug("module ", m.name, " (", m.uid, ") done")
			}
		}
	}

	for k, idx := range s.audioOut {
		copy(out[k], s.store.audio[idx][:size])
	}
	for _, idx := range s.inputParams {
		s.store.params[idx].Clear()
	}
	for _, idx := range s.inputNote {
		s.store.notes[idx].Clear()
	}

	if len(s.modules) > 0 {
		for _, m := range s.modules {
			if !m.done {
				return Continue, nil
			}
		}
		return Done, nil
	}
	return Continue, nil
}

func (s *Schedule) zeroOutputs(m *scheduledModule) {
	for _, idx := range m.bind.outs[Audio] {
		s.store.zeroAudio(idx)
	}
}

// Reset drops all accumulated runtime state without recompiling: module
// state, Done flags and buffered events.
func (s *Schedule) Reset() {
	for _, m := range s.modules {
		m.done = false
		m.zeroed = false
		if r, ok := m.module.(Resetter); ok {
			r.Reset()
		}
	}
	if !s.prepared {
		return
	}
	for i := range s.store.audio {
		s.store.zeroAudio(i)
	}
	for _, b := range s.store.params {
		b.Clear()
	}
	for _, b := range s.store.notes {
		b.Clear()
	}
}

// Latency returns the summed latency in samples reported by scheduled
// modules. Valid after Prepare.
func (s *Schedule) Latency() float64 {
	return s.latency
}

// Stages returns the module names of each execution stage, in run order.
func (s *Schedule) Stages() [][]string {
	stages := make([][]string, len(s.stages))
	for i, st := range s.stages {
		for _, m := range st.modules {
			stages[i] = append(stages[i], m.name)
		}
	}
	return stages
}

// InputParams returns the event buffer behind a param input terminal. The
// caller pushes events into it before Process; the engine clears it after
// the block. Returns nil before Prepare or for terminals not part of this
// schedule.
func (s *Schedule) InputParams(in Input) *ParamBuffer {
	t, ok := s.terminals[in.node]
	if !ok || !s.prepared || t.typ != Param || !t.isInput {
		return nil
	}
	return s.store.params[t.index]
}

// InputNotes returns the event buffer behind a note input terminal.
func (s *Schedule) InputNotes(in Input) *NoteBuffer {
	t, ok := s.terminals[in.node]
	if !ok || !s.prepared || t.typ != Note || !t.isInput {
		return nil
	}
	return s.store.notes[t.index]
}

// OutputParams returns the event buffer behind the compiled param output,
// readable after Process.
func (s *Schedule) OutputParams(out Output) *ParamBuffer {
	t, ok := s.terminals[out.node]
	if !ok || !s.prepared || t.typ != Param || t.isInput {
		return nil
	}
	return s.store.params[t.index]
}

// OutputNotes returns the event buffer behind the compiled note output,
// readable after Process.
func (s *Schedule) OutputNotes(out Output) *NoteBuffer {
	t, ok := s.terminals[out.node]
	if !ok || !s.prepared || t.typ != Note || t.isInput {
		return nil
	}
	return s.store.notes[t.index]
}
